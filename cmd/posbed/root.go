package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgbaldwinbrown/posbed/pkg/config"
	"github.com/jgbaldwinbrown/posbed/pkg/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "posbed",
	Short: "Convert genomic positions to BED, with optional hg19/hg38 liftover",
	Long: `posbed turns coordinates such as chr1:1000000 or 2:5000000-5001000 into
BED3 records. When the input and output assemblies differ, each interval is
remapped through the Ensembl REST coordinate mapping service.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assembliesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	levelName := cfg.Log.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	switch {
	case verbose:
		level = logging.LevelDebug
	case quiet:
		level = logging.LevelError
	}

	formatName := cfg.Log.Format
	if logFormat != "" {
		formatName = logFormat
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return err
	}

	logging.InitLogger(cmd.ErrOrStderr(), level, format)
	return nil
}
