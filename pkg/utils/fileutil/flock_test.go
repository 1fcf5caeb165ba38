//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd
// +build darwin dragonfly freebsd linux netbsd openbsd

package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o640))

	f1, err := os.Open(path)
	require.NoError(t, err)
	defer f1.Close()
	f2, err := os.Open(path)
	require.NoError(t, err)
	defer f2.Close()

	l1, err := NewLock(f1)
	require.NoError(t, err)
	_, err = NewLock(f2)
	assert.Error(t, err)

	require.NoError(t, l1.Release())
	l2, err := NewLock(f2)
	require.NoError(t, err)
	assert.NoError(t, l2.Release())
}
