// Package fileio opens inputs and creates outputs, transparently handling
// gzip compression for paths ending in .gz.
package fileio

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"regexp"
)

var gzre = regexp.MustCompile(`\.gz$`)

// Stdio is the path callers treat as stdin for reading and stdout for
// writing; the functions here always work on real files.
const Stdio = "-"

type GzReader struct {
	rc  io.ReadCloser
	gzr *gzip.Reader
}

func (g *GzReader) Read(p []byte) (n int, err error) {
	return g.gzr.Read(p)
}

func (g *GzReader) Close() error {
	g.gzr.Close()
	return g.rc.Close()
}

// GzOptOpen opens path for reading, decompressing when it ends in .gz.
func GzOptOpen(path string) (io.ReadCloser, error) {
	if !gzre.MatchString(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("GzOptOpen: %w", err)
		}
		return f, nil
	}

	var gzreader GzReader

	var err error
	gzreader.rc, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("GzOptOpen: %w", err)
	}

	gzreader.gzr, err = gzip.NewReader(gzreader.rc)
	if err != nil {
		gzreader.rc.Close()
		return nil, fmt.Errorf("GzOptOpen: %w", err)
	}

	return &gzreader, nil
}
