package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/bed"
	"github.com/jgbaldwinbrown/posbed/pkg/config"
	"github.com/jgbaldwinbrown/posbed/pkg/convert"
	"github.com/jgbaldwinbrown/posbed/pkg/fileio"
	"github.com/jgbaldwinbrown/posbed/pkg/report"
	"github.com/jgbaldwinbrown/posbed/pkg/serve"
)

const (
	inputPositions = "positions"
	inputBED       = "bed"
)

var (
	convertInput        string
	convertInputFormat  string
	convertOutput       string
	convertDefaultName  bool
	convertUnmapped     string
	convertFrom         string
	convertTo           string
	convertLiftover     bool
	convertNoLiftover   bool
	convertReport       string
	convertColor        string
	convertReasons      bool
	convertServiceURL   string
	convertTimeout      time.Duration
	convertStrictSingle bool
	convertNoCache      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [position...]",
	Short: "Convert genomic positions to BED",
	Long: `Convert one position per line (chr1:1000000 or chr1:1000000-1001000; the
chr prefix is optional) into BED3 records. Positions come from the arguments,
from --input, or from stdin.

Liftover runs when --from and --to differ unless --no-liftover is given.
Lines that cannot be parsed or remapped are reported and left out of the BED
output.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Input file, .gz accepted (default stdin)")
	convertCmd.Flags().StringVar(&convertInputFormat, "input-format", inputPositions, "Input format: positions, bed")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output BED file, .gz compresses (default stdout)")
	convertCmd.Flags().BoolVar(&convertDefaultName, "default-name", false, "Write to coordinates_<to>.bed")
	convertCmd.Flags().StringVarP(&convertUnmapped, "unmapped", "u", "", "Write failed lines to this file")
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Input assembly: hg19, hg38 (default from config, hg19)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Output assembly: hg19, hg38 (default from config, hg38)")
	convertCmd.Flags().BoolVar(&convertLiftover, "liftover", false, "Force liftover on")
	convertCmd.Flags().BoolVar(&convertNoLiftover, "no-liftover", false, "Force liftover off")
	convertCmd.Flags().StringVar(&convertReport, "report", report.FormatHuman, "Report on stderr: human, json, none")
	convertCmd.Flags().StringVar(&convertColor, "color", "auto", "Color output: auto, always, never")
	convertCmd.Flags().BoolVar(&convertReasons, "reasons", false, "Show why each liftover failed")
	convertCmd.Flags().StringVar(&convertServiceURL, "service-url", "", "Mapping service base URL (overrides config)")
	convertCmd.Flags().DurationVar(&convertTimeout, "timeout", 0, "Per-request timeout (overrides config)")
	convertCmd.Flags().BoolVar(&convertStrictSingle, "strict-single", false, "Treat more than one mapping as a failure")
	convertCmd.Flags().BoolVar(&convertNoCache, "no-cache", false, "Look up repeated intervals every time")
}

// convertConfig applies command-line overrides on top of the loaded config.
func convertConfig() (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if convertFrom != "" {
		if cfg.From, err = assembly.Parse(convertFrom); err != nil {
			return config.Config{}, fmt.Errorf("--from: %w", err)
		}
	}
	if convertTo != "" {
		if cfg.To, err = assembly.Parse(convertTo); err != nil {
			return config.Config{}, fmt.Errorf("--to: %w", err)
		}
	}
	if convertLiftover && convertNoLiftover {
		return config.Config{}, fmt.Errorf("--liftover and --no-liftover are mutually exclusive")
	}
	if convertLiftover {
		on := true
		cfg.Liftover = &on
	}
	if convertNoLiftover {
		off := false
		cfg.Liftover = &off
	}
	if convertServiceURL != "" {
		cfg.Service.URL = convertServiceURL
	}
	if convertTimeout > 0 {
		cfg.Service.Timeout = convertTimeout
	}
	if convertStrictSingle {
		cfg.Service.StrictSingle = true
	}
	if convertNoCache {
		cfg.Service.Cache = false
	}
	if convertOutput != "" {
		cfg.Output.Path = convertOutput
	}
	if convertDefaultName && convertOutput != "" {
		return config.Config{}, fmt.Errorf("--default-name and --output are mutually exclusive")
	}
	if convertDefaultName {
		cfg.Output.Path = serve.Filename(cfg.To)
	}
	if convertUnmapped != "" {
		cfg.Output.Unmapped = convertUnmapped
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := convertConfig()
	if err != nil {
		return err
	}

	conv := convert.New(nil)
	switch convertInputFormat {
	case inputPositions:
	case inputBED:
		conv.Parse = bed.NewLineParser().Parse
	default:
		return fmt.Errorf("unknown input format: %s", convertInputFormat)
	}

	opts := convert.Options{From: cfg.From, To: cfg.To, Liftover: cfg.LiftoverEnabled()}
	if opts.NeedsLiftover() {
		conv.Lifter = cfg.Lifter()
	}

	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rep, err := conv.Run(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("converting: %w", err)
	}

	if err := writeOutput(cmd, cfg.Output.Path, func(w io.Writer) error {
		return bed.Write(w, rep.Converted)
	}); err != nil {
		return fmt.Errorf("writing BED: %w", err)
	}

	if cfg.Output.Unmapped != "" {
		if err := writeOutput(cmd, cfg.Output.Unmapped, func(w io.Writer) error {
			return report.WriteUnmapped(w, rep, convertReasons)
		}); err != nil {
			return fmt.Errorf("writing unmapped: %w", err)
		}
	}

	if convertReport == "none" {
		return nil
	}
	return report.Write(cmd.ErrOrStderr(), rep, report.Settings{
		Format:  convertReport,
		Color:   useColor(cmd, convertColor),
		Reasons: convertReasons,
	})
}

func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) > 0 {
		if convertInput != "" {
			return nil, fmt.Errorf("give positions as arguments or with --input, not both")
		}
		return io.NopCloser(strings.NewReader(strings.Join(args, "\n"))), nil
	}
	if convertInput == "" || convertInput == fileio.Stdio {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	in, err := fileio.GzOptOpen(convertInput)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return in, nil
}

// writeOutput sends write's output to path, or to the command's stdout when
// path is empty or "-". A failed write leaves no file behind.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == fileio.Stdio {
		return write(cmd.OutOrStdout())
	}
	out, err := fileio.GzOptCreate(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		fileio.Abort(out)
		return err
	}
	return out.Close()
}

// useColor resolves --color; auto means colors only on a terminal stderr
// with NO_COLOR unset.
func useColor(cmd *cobra.Command, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.ErrOrStderr().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
