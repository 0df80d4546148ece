// Package position parses human-written genomic coordinates such as
// "chr1:1000000-1001000", "2:5000000" or "chrX:10-20" into intervals.
package position

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const chrPrefix = "chr"

// Both patterns are anchored at the start only; trailing text after a
// recognized coordinate is ignored.
var (
	rangeRe  = regexp.MustCompile(`^(chr[0-9XYM]+):([0-9]+)-([0-9]+)`)
	singleRe = regexp.MustCompile(`^(chr[0-9XYM]+):([0-9]+)`)
)

// Interval is a BED-style interval: Start is 0-based inclusive, End is
// exclusive. Range input is kept verbatim, so Start > End is possible.
type Interval struct {
	Chrom string `json:"chrom"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", iv.Chrom, iv.Start, iv.End)
}

// BED returns the interval as a BED3 record without a trailing newline.
func (iv Interval) BED() string {
	return fmt.Sprintf("%s\t%d\t%d", iv.Chrom, iv.Start, iv.End)
}

// Failure records an input line that could not be parsed.
type Failure struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

func (f Failure) String() string {
	return fmt.Sprintf("Line %d: %s", f.Line, f.Text)
}

// Blank reports whether a line carries nothing to parse.
func Blank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Parse converts one line into an interval. ok is false both for blank lines
// and for lines that match neither coordinate form; use Blank to tell them
// apart.
func Parse(line string) (iv Interval, ok bool) {
	text := strings.TrimSpace(line)
	if text == "" {
		return Interval{}, false
	}
	if !strings.HasPrefix(text, chrPrefix) {
		text = chrPrefix + text
	}

	if subs := rangeRe.FindStringSubmatch(text); subs != nil {
		start, err := strconv.ParseInt(subs[2], 10, 64)
		if err != nil {
			return Interval{}, false
		}
		end, err := strconv.ParseInt(subs[3], 10, 64)
		if err != nil {
			return Interval{}, false
		}
		return Interval{Chrom: subs[1], Start: start, End: end}, true
	}

	if subs := singleRe.FindStringSubmatch(text); subs != nil {
		pos, err := strconv.ParseInt(subs[2], 10, 64)
		if err != nil || pos == 1<<63-1 {
			return Interval{}, false
		}
		return Interval{Chrom: subs[1], Start: pos, End: pos + 1}, true
	}

	return Interval{}, false
}

// ParseLine is Parse with failure bookkeeping. It returns (nil, nil) for
// blank lines.
func ParseLine(line string, linenum int) (*Interval, *Failure) {
	if Blank(line) {
		return nil, nil
	}
	iv, ok := Parse(line)
	if !ok {
		return nil, &Failure{Line: linenum, Text: line}
	}
	return &iv, nil
}
