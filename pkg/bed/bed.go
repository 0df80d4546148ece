// Package bed reads and writes BED3 records. See
// https://genome.ucsc.edu/FAQ/FAQformat.html#format1
package bed

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/lscan/pkg"

	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

// Header reports whether a line is a comment, track or browser line.
func Header(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// LineParser turns existing BED records into intervals, ignoring any column
// past the third. It reuses its field buffer between calls and is not safe
// for concurrent use.
type LineParser struct {
	fields []string
}

var tabSplit = lscan.ByByte('\t')

func NewLineParser() *LineParser {
	return &LineParser{}
}

// Parse returns (nil, nil) for blank and header lines.
func (p *LineParser) Parse(line string, linenum int) (*position.Interval, *position.Failure) {
	text := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(text) == "" || Header(text) {
		return nil, nil
	}

	p.fields = lscan.SplitByFunc(p.fields, text, tabSplit)
	if len(p.fields) < 3 {
		return nil, &position.Failure{Line: linenum, Text: line}
	}
	start, err := strconv.ParseInt(strings.TrimSpace(p.fields[1]), 10, 64)
	if err != nil {
		return nil, &position.Failure{Line: linenum, Text: line}
	}
	end, err := strconv.ParseInt(strings.TrimSpace(p.fields[2]), 10, 64)
	if err != nil {
		return nil, &position.Failure{Line: linenum, Text: line}
	}
	return &position.Interval{Chrom: strings.TrimSpace(p.fields[0]), Start: start, End: end}, nil
}

// Write writes one BED3 record per interval, each newline-terminated.
func Write(w io.Writer, ivs []position.Interval) error {
	bw := bufio.NewWriter(w)
	for _, iv := range ivs {
		if _, err := fmt.Fprintf(bw, "%v\t%v\t%v\n", iv.Chrom, iv.Start, iv.End); err != nil {
			return fmt.Errorf("Write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

// Join renders intervals as newline-joined BED3 text with no trailing
// newline.
func Join(ivs []position.Interval) string {
	lines := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		lines = append(lines, iv.BED())
	}
	return strings.Join(lines, "\n")
}
