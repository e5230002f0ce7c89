package output

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clientstage/internal/errors"
)

func TestWriteArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := &Writer{Dir: dir, Mode: 0o640}

	path, err := w.Write(Artifact{PRURL: "https://github.com/o/r/pull/1"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pr_url: https://github.com/o/r/pull/1\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	a, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/o/r/pull/1", a.PRURL)
}

func TestClearRemovesStaleArtifact(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Mode: 0o644}

	require.NoError(t, w.Clear(), "clearing a missing artifact is fine")

	_, err := w.Write(Artifact{PRURL: "old"})
	require.NoError(t, err)
	require.NoError(t, w.Clear())
	assert.NoFileExists(t, w.Path())
}

func TestWriteLeavesNothingWhenModeCannotBeApplied(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Mode: 0o644}
	w.chmod = func(*os.File, os.FileMode) error { return stderrors.New("operation not permitted") }

	_, err := w.Write(Artifact{PRURL: "https://github.com/o/r/pull/1"})

	require.Error(t, err)
	assert.Equal(t, errors.CategoryIO, errors.CategoryOf(err))
	assert.NoFileExists(t, w.Path())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
