package fileio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
)

type GzWriter struct {
	wc  io.WriteCloser
	bw  *bufio.Writer
	gzw *gzip.Writer
}

func (g *GzWriter) Write(p []byte) (n int, err error) {
	return g.gzw.Write(p)
}

func (g *GzWriter) Close() error {
	gzerr := g.gzw.Close()
	bwerr := g.bw.Flush()
	err := g.wc.Close()
	if gzerr != nil {
		return gzerr
	}
	if bwerr != nil {
		return bwerr
	}
	return err
}

func GzWrapWriter(w io.WriteCloser) *GzWriter {
	g := new(GzWriter)
	g.wc = w
	g.bw = bufio.NewWriter(g.wc)
	g.gzw = gzip.NewWriter(g.bw)
	return g
}

// GzOptCreate creates path for writing, compressing when it ends in .gz.
// The data goes to a temporary file beside path that replaces path on Close,
// so an interrupted run never leaves a truncated output behind.
func GzOptCreate(path string) (io.WriteCloser, error) {
	a, err := CreateAtomic(path)
	if err != nil {
		return nil, fmt.Errorf("GzOptCreate: %w", err)
	}
	if !gzre.MatchString(path) {
		return a, nil
	}
	return GzWrapWriter(a), nil
}

// Abort discards the output if the underlying writer supports it.
func (g *GzWriter) Abort() {
	Abort(g.wc)
}

// Abort discards w's pending output when w was created by GzOptCreate for
// a file path; other writers are left alone.
func Abort(w io.Writer) {
	if a, ok := w.(interface{ Abort() }); ok {
		a.Abort()
	}
}
