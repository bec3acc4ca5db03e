package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_NothingRequested(t *testing.T) {
	stop, err := Start("", "")
	require.NoError(t, err)
	stop()
}

func TestStart_CPUProfileWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")

	stop, err := Start(path, "")
	require.NoError(t, err)
	stop()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteHeap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.pprof")
	require.NoError(t, WriteHeap(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(filepath.Join(t.TempDir(), "missing", "cpu.pprof"), "")
	assert.Error(t, err)
}
