package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func CloseAny[T any](ts ...T) {
	for _, t := range ts {
		a := any(t)
		if c, ok := a.(io.Closer); ok {
			c.Close()
		}
	}
}

func RemoveAll(files ...*os.File) {
	for _, f := range files {
		os.Remove(f.Name())
	}
}

func CreateTemps(dirs []string, prefixes []string) ([]*os.File, error) {
	var files []*os.File

	if len(dirs) != len(prefixes) {
		return nil, fmt.Errorf("CreateTemps: len(dirs) %v != len(prefixes) %v", len(dirs), len(prefixes))
	}

	for i := 0; i < len(dirs); i++ {
		file, err := os.CreateTemp(dirs[i], prefixes[i])
		if err != nil {
			CloseAny(files...)
			RemoveAll(files...)
			return nil, fmt.Errorf("CreateTemps: %w", err)
		}
		files = append(files, file)
	}

	return files, nil
}

// AtomicFile is a temp file that is renamed onto its target path when
// closed. Abort discards it instead.
type AtomicFile struct {
	*os.File
	target string
	done   bool
}

func CreateAtomic(path string) (*AtomicFile, error) {
	temps, err := CreateTemps([]string{filepath.Dir(path)}, []string{"." + filepath.Base(path) + ".tmp_*"})
	if err != nil {
		return nil, err
	}
	return &AtomicFile{File: temps[0], target: path}, nil
}

func (a *AtomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true
	if err := a.File.Close(); err != nil {
		RemoveAll(a.File)
		return fmt.Errorf("AtomicFile.Close: %w", err)
	}
	if err := os.Chmod(a.File.Name(), 0o644); err != nil {
		RemoveAll(a.File)
		return fmt.Errorf("AtomicFile.Close: %w", err)
	}
	if err := os.Rename(a.File.Name(), a.target); err != nil {
		RemoveAll(a.File)
		return fmt.Errorf("AtomicFile.Close: %w", err)
	}
	return nil
}

// Abort removes the temp file without touching the target.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.File.Close()
	RemoveAll(a.File)
}
