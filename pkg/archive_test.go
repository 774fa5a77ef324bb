package pkg

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirExists(t *testing.T) {
	exists, err := DirExists("/invalid/path/some-dir")
	require.NoError(t, err)
	assert.False(t, exists)

	dir := t.TempDir()
	exists, err = DirExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	file := filepath.Join(dir, "sessions.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o600))
	exists, err = DirExists(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
	assert.False(t, exists)
}

func TestArchiveDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workout_history"), []byte(`[{"id":"s1"}]`), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drafts", "day-1"), []byte(`{}`), 0o600))

	var buf bytes.Buffer
	require.NoError(t, ArchiveDir(dir, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	contents := map[string]string{}
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if header.Typeflag == tar.TypeDir {
			contents[header.Name] = "<dir>"
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[header.Name] = string(data)
	}

	assert.Equal(t, map[string]string{
		"workout_history": `[{"id":"s1"}]`,
		"drafts":          "<dir>",
		"drafts/day-1":    `{}`,
	}, contents)
}
