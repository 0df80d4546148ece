package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/bed"
	"github.com/jgbaldwinbrown/posbed/pkg/liftover"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

const sampleInput = "chr1:1000000\nchr2:5000000-5001000\n3:1234567-1234890\n\nbadline"

// recordingLifter shifts every interval by offset and counts calls.
type recordingLifter struct {
	calls  int
	offset int64
}

func (l *recordingLifter) Lift(ctx context.Context, iv position.Interval, from, to assembly.ID) liftover.Result {
	l.calls++
	return liftover.Mapped(position.Interval{Chrom: iv.Chrom, Start: iv.Start + l.offset, End: iv.End + l.offset})
}

func alwaysFail(ctx context.Context, iv position.Interval, from, to assembly.ID) liftover.Result {
	return liftover.Failed(liftover.ReasonNetwork, "service unavailable")
}

func TestRun_LiftoverDisabled(t *testing.T) {
	lifter := &recordingLifter{offset: 1}
	c := New(lifter)

	rep, err := c.RunText(context.Background(), sampleInput, Options{From: assembly.HG19, To: assembly.HG38, Liftover: false})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"chr1\t1000000\t1000001",
		"chr2\t5000000\t5001000",
		"chr3\t1234567\t1234890",
	}, rep.Lines())
	assert.Equal(t, "chr1\t1000000\t1000001\nchr2\t5000000\t5001000\nchr3\t1234567\t1234890", rep.BED())
	assert.Equal(t, []position.Failure{{Line: 5, Text: "badline"}}, rep.ParseFailures)
	assert.Empty(t, rep.LiftoverFailures)
	assert.Equal(t, 1, rep.Skipped)
	assert.Zero(t, lifter.calls)
	assert.NotEmpty(t, rep.RunID)
}

func TestRun_SameAssemblyNeverLifts(t *testing.T) {
	for _, toggle := range []bool{true, false} {
		lifter := &recordingLifter{offset: 100}
		c := New(lifter)
		rep, err := c.RunText(context.Background(), sampleInput, Options{From: assembly.HG38, To: assembly.HG38, Liftover: toggle})
		require.NoError(t, err)
		assert.Zero(t, lifter.calls)
		assert.Len(t, rep.Converted, 3)
		assert.Equal(t, position.Interval{Chrom: "chr1", Start: 1000000, End: 1000001}, rep.Converted[0])
	}
}

func TestRun_SameAssemblyWithoutLifter(t *testing.T) {
	c := New(nil)
	rep, err := c.RunText(context.Background(), "chr1:5", DefaultOptions(assembly.HG19, assembly.HG19))
	require.NoError(t, err)
	assert.Equal(t, "chr1\t5\t6", rep.BED())
}

func TestRun_LiftoverApplied(t *testing.T) {
	lifter := &recordingLifter{offset: 10}
	c := New(lifter)
	rep, err := c.RunText(context.Background(), sampleInput, DefaultOptions(assembly.HG19, assembly.HG38))
	require.NoError(t, err)

	assert.Equal(t, 3, lifter.calls)
	assert.Equal(t, []string{
		"chr1\t1000010\t1000011",
		"chr2\t5000010\t5001010",
		"chr3\t1234577\t1234900",
	}, rep.Lines())
	assert.Len(t, rep.ParseFailures, 1)
	assert.Empty(t, rep.LiftoverFailures)
}

func TestRun_AlwaysFailingService(t *testing.T) {
	c := New(liftover.LifterFunc(alwaysFail))
	rep, err := c.RunText(context.Background(), sampleInput, DefaultOptions(assembly.HG19, assembly.HG38))
	require.NoError(t, err)

	assert.Empty(t, rep.Converted)
	assert.Equal(t, "", rep.BED())
	assert.Len(t, rep.ParseFailures, 1)
	require.Len(t, rep.LiftoverFailures, 3)

	first := rep.LiftoverFailures[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "chr1:1000000", first.Text)
	assert.Equal(t, position.Interval{Chrom: "chr1", Start: 1000000, End: 1000001}, first.Interval)
	assert.Equal(t, liftover.ReasonNetwork, first.Reason)
	assert.Equal(t, "Line 1: chr1:1000000 (chr1:1000000-1000001)", first.String())

	third := rep.LiftoverFailures[2]
	assert.Equal(t, 3, third.Line)
	assert.Equal(t, "3:1234567-1234890", third.Text)
}

func TestRun_PartialFailureKeepsOrder(t *testing.T) {
	lifter := liftover.LifterFunc(func(ctx context.Context, iv position.Interval, from, to assembly.ID) liftover.Result {
		if iv.Chrom == "chr2" {
			return liftover.Failed(liftover.ReasonNoMapping, "no mapping returned")
		}
		return liftover.Mapped(iv)
	})
	c := New(lifter)
	rep, err := c.RunText(context.Background(), "chr3:1\nchr2:1\nchr1:1", DefaultOptions(assembly.HG38, assembly.HG19))
	require.NoError(t, err)
	assert.Equal(t, "chr3\t1\t2\nchr1\t1\t2", rep.BED())
	require.Len(t, rep.LiftoverFailures, 1)
	assert.Equal(t, 2, rep.LiftoverFailures[0].Line)
}

func TestRun_BlankInput(t *testing.T) {
	c := New(nil)
	rep, err := c.RunText(context.Background(), "\n   \n\t\n", DefaultOptions(assembly.HG19, assembly.HG19))
	require.NoError(t, err)
	assert.True(t, rep.Empty())
	assert.Zero(t, rep.Skipped, "a block of only whitespace trims to nothing")
}

func TestRunText_NumbersAfterTrimmingBlock(t *testing.T) {
	c := New(nil)
	rep, err := c.RunText(context.Background(), "\n\n  badline\nchr1:5", DefaultOptions(assembly.HG19, assembly.HG19))
	require.NoError(t, err)
	assert.Equal(t, []position.Failure{{Line: 1, Text: "badline"}}, rep.ParseFailures)
	assert.Equal(t, "chr1\t5\t6", rep.BED())
}

func TestRun_NumbersRawLines(t *testing.T) {
	c := New(nil)
	rep, err := c.Run(context.Background(), strings.NewReader("\n\n  badline\nchr1:5"), DefaultOptions(assembly.HG19, assembly.HG19))
	require.NoError(t, err)
	assert.Equal(t, []position.Failure{{Line: 3, Text: "  badline"}}, rep.ParseFailures)
	assert.Equal(t, 2, rep.Skipped)
}

func TestRun_LiftoverWithoutClient(t *testing.T) {
	c := New(nil)
	_, err := c.RunText(context.Background(), "chr1:1", DefaultOptions(assembly.HG19, assembly.HG38))
	assert.Error(t, err)
}

func TestRun_InvalidOptions(t *testing.T) {
	c := New(nil)
	_, err := c.RunText(context.Background(), "chr1:1", Options{From: "hg17", To: assembly.HG38})
	require.Error(t, err)
	assert.ErrorIs(t, err, assembly.ErrUnknownAssembly)
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("disk on fire") }

func TestRun_ReadError(t *testing.T) {
	c := New(nil)
	_, err := c.Run(context.Background(), errReader{}, DefaultOptions(assembly.HG19, assembly.HG19))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestRun_BEDInput(t *testing.T) {
	c := New(&recordingLifter{offset: 5})
	c.Parse = bed.NewLineParser().Parse
	input := strings.Join([]string{
		"track name=regions",
		"chr1\t100\t200\tgeneA",
		"chr2\tbad\t300",
	}, "\n")
	rep, err := c.RunText(context.Background(), input, DefaultOptions(assembly.HG19, assembly.HG38))
	require.NoError(t, err)
	assert.Equal(t, "chr1\t105\t205", rep.BED())
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.ParseFailures, 1)
	assert.Equal(t, 3, rep.ParseFailures[0].Line)
}

func TestDefaultOptions(t *testing.T) {
	assert.True(t, DefaultOptions(assembly.HG19, assembly.HG38).Liftover)
	assert.False(t, DefaultOptions(assembly.HG38, assembly.HG38).Liftover)
	assert.False(t, Options{From: assembly.HG19, To: assembly.HG19, Liftover: true}.NeedsLiftover())
}
