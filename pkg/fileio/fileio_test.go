package fileio

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzOptCreateAndOpen_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bed")

	w, err := GzOptCreate(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "chr1\t1\t2\n")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "target must not exist before Close")

	require.NoError(t, w.Close())

	r, err := GzOptOpen(path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t1\t2\n", string(data))
}

func TestGzOptCreateAndOpen_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bed.gz")

	w, err := GzOptCreate(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "chr2\t5\t9\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gzr, err := gzip.NewReader(f)
	require.NoError(t, err, "file on disk must be gzip")
	raw, err := io.ReadAll(gzr)
	require.NoError(t, err)
	assert.Equal(t, "chr2\t5\t9\n", string(raw))

	r, err := GzOptOpen(path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "chr2\t5\t9\n", string(data))
}

func TestAbort(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.bed", "b.bed.gz"} {
		path := filepath.Join(dir, name)
		w, err := GzOptCreate(path)
		require.NoError(t, err)
		io.WriteString(w, "partial")
		Abort(w)
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), name)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed")
}

func TestGzOptOpen_Missing(t *testing.T) {
	_, err := GzOptOpen(filepath.Join(t.TempDir(), "nope.bed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGzOptOpen_DashIsAPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	_, err = GzOptOpen(Stdio)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(Stdio, []byte("chr1\t1\t2\n"), 0o644))
	r, err := GzOptOpen(Stdio)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t1\t2\n", string(data))
}

func TestCreateTemps_Mismatch(t *testing.T) {
	_, err := CreateTemps([]string{"a", "b"}, []string{"x"})
	assert.Error(t, err)
}
