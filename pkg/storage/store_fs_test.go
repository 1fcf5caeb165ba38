package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meterbind/pkg/apis"
	"meterbind/pkg/runtime"
)

type object struct {
	runtime.ObjectMeta
	Board string `json:"board"`
}

func newClient(t *testing.T) *FsClient {
	fc, err := NewFsClient(t.TempDir(), StoreGroupBuild)
	require.NoError(t, err)
	return fc
}

func TestNewFsClient(t *testing.T) {
	root := t.TempDir()
	_, err := NewFsClient(root, StoreGroupBuild)
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(root, "build", Builds))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = NewFsClient(filepath.Join(root, "missing"), StoreGroupBuild)
	assert.True(t, os.IsNotExist(err))
	_, err = NewFsClient(root, StoreGroup(9))
	assert.Error(t, err)
}

func TestFsClientCreateGetList(t *testing.T) {
	fc := newClient(t)
	key := filepath.Join(Builds, "b1")
	obj := &object{ObjectMeta: runtime.ObjectMeta{ID: "b1", Version: "1", ModTime: time.Now()}, Board: "esp32"}

	_, err := fc.Create(key, obj)
	require.NoError(t, err)
	_, err = fc.Create(key, obj)
	assert.True(t, os.IsExist(err))

	data, err := fc.Get(key)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"board":"esp32"`)

	_, err = fc.Create(filepath.Join(Builds, "b2"), &object{ObjectMeta: runtime.ObjectMeta{ID: "b2", Version: "2"}})
	require.NoError(t, err)
	files, err := fc.List(Builds)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		_, err := fc.Get(f.Path)
		assert.NoError(t, err)
	}
}

func TestFsClientDelete(t *testing.T) {
	fc := newClient(t)
	key := filepath.Join(Builds, "b1")
	_, err := fc.Create(key, &object{ObjectMeta: runtime.ObjectMeta{ID: "b1", Version: "3"}})
	require.NoError(t, err)

	assert.True(t, errors.Is(fc.Delete(key, "4"), apis.ErrMismatch))
	require.NoError(t, fc.Delete(key, "3"))
	_, err = fc.Get(key)
	assert.True(t, os.IsNotExist(err))
	assert.True(t, os.IsNotExist(fc.Delete(key, "3")))
}

func TestFsClientDeleteUnconditionally(t *testing.T) {
	fc := newClient(t)
	key := filepath.Join(Builds, "b1")
	_, err := fc.Create(key, &object{ObjectMeta: runtime.ObjectMeta{ID: "b1", Version: "1"}})
	require.NoError(t, err)

	require.NoError(t, fc.Delete(key, ""))
	_, err = fc.Get(key)
	assert.True(t, os.IsNotExist(err))
	// nothing left to remove
	assert.NoError(t, fc.Delete(key, ""))
}
