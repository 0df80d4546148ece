// Package convert runs a batch of coordinate lines through parsing and
// optional liftover, collecting BED records and per-line failures.
package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/bed"
	"github.com/jgbaldwinbrown/posbed/pkg/liftover"
	"github.com/jgbaldwinbrown/posbed/pkg/logging"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

// ParseFunc turns one input line into an interval. Both results nil means
// the line is skipped.
type ParseFunc func(line string, linenum int) (*position.Interval, *position.Failure)

// Options are the user's choices for one run.
type Options struct {
	From     assembly.ID `json:"from"`
	To       assembly.ID `json:"to"`
	Liftover bool        `json:"liftover"`
}

// DefaultOptions enables liftover exactly when the assemblies differ.
func DefaultOptions(from, to assembly.ID) Options {
	return Options{From: from, To: to, Liftover: from != to}
}

// NeedsLiftover is false whenever source and target match, whatever the
// toggle says.
func (o Options) NeedsLiftover() bool {
	return o.Liftover && o.From != o.To
}

func (o Options) Validate() error {
	if !o.From.Valid() {
		return fmt.Errorf("input assembly %q: %w", o.From, assembly.ErrUnknownAssembly)
	}
	if !o.To.Valid() {
		return fmt.Errorf("output assembly %q: %w", o.To, assembly.ErrUnknownAssembly)
	}
	return nil
}

// LiftoverFailure is a parsed line the mapping service could not remap.
type LiftoverFailure struct {
	Line     int               `json:"line"`
	Text     string            `json:"text"`
	Interval position.Interval `json:"interval"`
	Reason   liftover.Reason   `json:"reason,omitempty"`
	Detail   string            `json:"detail,omitempty"`
}

func (f LiftoverFailure) String() string {
	return fmt.Sprintf("Line %d: %s (%s)", f.Line, f.Text, f.Interval)
}

// Report is the result of one run. Entries keep input order.
type Report struct {
	RunID            string              `json:"run_id"`
	Options          Options             `json:"options"`
	Converted        []position.Interval `json:"converted"`
	ParseFailures    []position.Failure  `json:"parse_failures"`
	LiftoverFailures []LiftoverFailure   `json:"liftover_failures"`
	Skipped          int                 `json:"skipped"`
}

// BED returns the converted records as newline-joined BED3 text.
func (r *Report) BED() string {
	return bed.Join(r.Converted)
}

// Lines returns the converted records as individual BED3 lines.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Converted))
	for _, iv := range r.Converted {
		lines = append(lines, iv.BED())
	}
	return lines
}

// Empty reports whether the input held no non-blank lines.
func (r *Report) Empty() bool {
	return len(r.Converted) == 0 && len(r.ParseFailures) == 0 && len(r.LiftoverFailures) == 0
}

// Converter processes batches sequentially. Lifter may be nil when liftover
// is never requested.
type Converter struct {
	Lifter liftover.Lifter
	Parse  ParseFunc
}

func New(lifter liftover.Lifter) *Converter {
	return &Converter{Lifter: lifter, Parse: position.ParseLine}
}

// Run reads lines from r until EOF. Per-line failures are recorded in the
// report; only a read error aborts the batch.
func (c *Converter) Run(ctx context.Context, r io.Reader, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if opts.NeedsLiftover() && c.Lifter == nil {
		return nil, fmt.Errorf("Run: liftover %s -> %s requested without a liftover client", opts.From, opts.To)
	}
	parse := c.Parse
	if parse == nil {
		parse = position.ParseLine
	}

	rep := &Report{
		RunID:            uuid.NewString(),
		Options:          opts,
		Converted:        []position.Interval{},
		ParseFailures:    []position.Failure{},
		LiftoverFailures: []LiftoverFailure{},
	}
	ctx = logging.WithRunID(ctx, rep.RunID)

	s := bufio.NewScanner(r)
	s.Buffer([]byte{}, 1e9)
	for linenum := 1; s.Scan(); linenum++ {
		c.line(ctx, rep, parse, s.Text(), linenum)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("Run: reading input: %w", err)
	}

	logging.BatchSummary(ctx, len(rep.Converted), len(rep.ParseFailures), len(rep.LiftoverFailures), rep.Skipped,
		"from", opts.From, "to", opts.To, "liftover", opts.NeedsLiftover())
	return rep, nil
}

// RunText is Run over a pasted block of text. The block's outer whitespace
// is trimmed before lines are numbered, so leading blank lines do not count.
func (c *Converter) RunText(ctx context.Context, text string, opts Options) (*Report, error) {
	return c.Run(ctx, strings.NewReader(strings.TrimSpace(text)), opts)
}

func (c *Converter) line(ctx context.Context, rep *Report, parse ParseFunc, text string, linenum int) {
	iv, fail := parse(text, linenum)
	switch {
	case fail != nil:
		logging.DebugContext(ctx, "parse_failed", "line", linenum, "text", text)
		rep.ParseFailures = append(rep.ParseFailures, *fail)
		return
	case iv == nil:
		rep.Skipped++
		return
	}

	out := *iv
	if rep.Options.NeedsLiftover() {
		res := c.Lifter.Lift(ctx, out, rep.Options.From, rep.Options.To)
		if !res.OK {
			logging.DebugContext(ctx, "liftover_failed", "line", linenum, "interval", out.String(),
				"reason", string(res.Reason), "detail", res.Detail)
			rep.LiftoverFailures = append(rep.LiftoverFailures, LiftoverFailure{
				Line:     linenum,
				Text:     text,
				Interval: out,
				Reason:   res.Reason,
				Detail:   res.Detail,
			})
			return
		}
		out = res.Interval
	}
	rep.Converted = append(rep.Converted, out)
}
