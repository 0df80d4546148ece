// Package report renders conversion results for people and programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/jgbaldwinbrown/posbed/pkg/convert"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

// Formats accepted by Write.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

// Settings control how much detail is shown.
type Settings struct {
	Format string
	Color  bool
	// Reasons adds the failure reason to each liftover failure. Off by
	// default: failures are reported as one bucket.
	Reasons bool
}

type styles struct {
	success *color.Color
	failure *color.Color
	warning *color.Color
	heading *color.Color
	detail  *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		success: color.New(color.FgGreen),
		failure: color.New(color.Bold, color.FgRed),
		warning: color.New(color.Bold, color.FgYellow),
		heading: color.New(color.Bold),
		detail:  color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{s.success, s.failure, s.warning, s.heading, s.detail} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func Write(w io.Writer, rep *convert.Report, set Settings) error {
	switch set.Format {
	case FormatHuman, "":
		return WriteHuman(w, rep, set)
	case FormatJSON:
		return WriteJSON(w, rep, set)
	}
	return fmt.Errorf("unknown report format: %s", set.Format)
}

func WriteHuman(w io.Writer, rep *convert.Report, set Settings) error {
	st := newStyles(set.Color)
	var err error
	p := func(c *color.Color, format string, args ...any) {
		if err == nil {
			_, err = c.Fprintf(w, format, args...)
		}
	}

	if rep.Empty() {
		p(st.warning, "No genomic positions found in input.\n")
		return err
	}

	if n := len(rep.Converted); n > 0 {
		p(st.success, "Successfully converted %s position(s)", humanize.Comma(int64(n)))
		if rep.Options.NeedsLiftover() {
			p(st.detail, " (%s -> %s)", rep.Options.From, rep.Options.To)
		}
		p(st.success, "\n")
	}

	if n := len(rep.ParseFailures); n > 0 {
		p(st.failure, "Failed to parse %s line(s):\n", humanize.Comma(int64(n)))
		for _, f := range rep.ParseFailures {
			p(st.heading, "%s\n", f)
		}
	}

	if n := len(rep.LiftoverFailures); n > 0 {
		p(st.warning, "LiftOver failed for %s position(s):\n", humanize.Comma(int64(n)))
		for _, f := range rep.LiftoverFailures {
			p(st.heading, "%s", f)
			if set.Reasons {
				p(st.detail, " [%s: %s]", f.Reason, f.Detail)
			}
			p(st.heading, "\n")
		}
	}
	return err
}

type jsonReport struct {
	RunID            string                    `json:"run_id"`
	Options          convert.Options           `json:"options"`
	BED              []string                  `json:"bed"`
	ParseFailures    []position.Failure        `json:"parse_failures"`
	LiftoverFailures []convert.LiftoverFailure `json:"liftover_failures"`
	Skipped          int                       `json:"skipped"`
}

// JSON returns the report as a value ready for encoding/json.
func JSON(rep *convert.Report, set Settings) any {
	fails := make([]convert.LiftoverFailure, 0, len(rep.LiftoverFailures))
	for _, f := range rep.LiftoverFailures {
		if !set.Reasons {
			f.Reason = ""
			f.Detail = ""
		}
		fails = append(fails, f)
	}
	parseFails := rep.ParseFailures
	if parseFails == nil {
		parseFails = []position.Failure{}
	}
	return jsonReport{
		RunID:            rep.RunID,
		Options:          rep.Options,
		BED:              rep.Lines(),
		ParseFailures:    parseFails,
		LiftoverFailures: fails,
		Skipped:          rep.Skipped,
	}
}

func WriteJSON(w io.Writer, rep *convert.Report, set Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(JSON(rep, set)); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}

// WriteUnmapped lists every failed line in the style of UCSC liftOver's
// unmapped file: a comment naming the problem, then the record.
func WriteUnmapped(w io.Writer, rep *convert.Report, reasons bool) error {
	for _, f := range rep.ParseFailures {
		if _, err := fmt.Fprintf(w, "#Failed to parse (line %d)\n%s\n", f.Line, f.Text); err != nil {
			return fmt.Errorf("WriteUnmapped: %w", err)
		}
	}
	for _, f := range rep.LiftoverFailures {
		comment := "#Liftover failed"
		if reasons && f.Reason != "" {
			comment += ": " + string(f.Reason)
		}
		if _, err := fmt.Fprintf(w, "%s (line %d)\n%s\n", comment, f.Line, f.Interval.BED()); err != nil {
			return fmt.Errorf("WriteUnmapped: %w", err)
		}
	}
	return nil
}
