package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	target := filepath.Join(root, "a", "a", "ab", "abc.jpg")

	// --- Act ---
	n, err := WriteAtomic(target, strings.NewReader("payload"), 0o644)

	// --- Assert ---
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
	require.True(t, FileExists(target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file should not be left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteAtomic_FailureLeavesNothing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "x.jpg")

	_, err := WriteAtomic(target, failingReader{}, 0o644)

	require.ErrorContains(t, err, "connection reset")
	require.False(t, FileExists(target))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.False(t, FileExists(filepath.Join(root, "missing")))
	require.False(t, FileExists(root), "directories are not files")
}
