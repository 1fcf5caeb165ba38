package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/mod/sumdb"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
	"meterbind/pkg/apis"
	"meterbind/pkg/runtime"
	"meterbind/pkg/utils/fileutil"
)

// FsClient keeps one JSON file per object under a store group directory.
type FsClient struct {
	storePath string
}

var _ Storage = (*FsClient)(nil)

func NewFsClient(root string, sg StoreGroup) (*FsClient, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	var dirs []string
	switch sg {
	case StoreGroupBuild:
		dirs = []string{
			Builds,
		}
	default:
		return nil, fmt.Errorf("unsupported store group %d", sg)
	}

	fc := &FsClient{storePath: filepath.Join(root, StoreGroupToString[sg])}
	for _, m := range dirs {
		p := filepath.Join(fc.storePath, m)

		_, err := os.Stat(p)
		if os.IsNotExist(err) {
			absPath, _ := filepath.Abs(p)
			klog.V(2).InfoS("Created", "path", absPath)
			if err = os.MkdirAll(p, 0711); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}
	return fc, nil
}

func (fc *FsClient) Create(key string, obj interface{}) (interface{}, error) {
	f, err := os.OpenFile(filepath.Join(fc.storePath, key), os.O_CREATE|os.O_RDWR|os.O_EXCL, 0640)
	if err != nil {
		klog.V(2).InfoS("Failed to create file", "err", err)
		return nil, err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(obj)
	if err != nil {
		klog.V(2).InfoS("Failed to encode", "err", err)
		return nil, err
	}
	return obj, nil
}

func (fc *FsClient) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(fc.storePath, key))
	if err != nil {
		klog.V(2).InfoS("Failed to read", "err", err)
		return nil, err
	}
	return data, nil
}

// List returns the files under key, oldest first. Paths are relative to the
// store group so they can be passed back to Get and Delete.
func (fc *FsClient) List(key string) ([]*FileInfo, error) {
	var files []*FileInfo
	err := filepath.Walk(filepath.Join(fc.storePath, key), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, err := filepath.Rel(fc.storePath, path)
			if err != nil {
				return err
			}
			files = append(files, &FileInfo{
				Path:    rel,
				ModTime: info.ModTime(),
			})
		}
		return nil
	})
	if err != nil {
		klog.V(2).InfoS("Failed to list", "err", err)
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

func (fc *FsClient) Delete(key, version string) error {
	// an empty version removes unconditionally, retrying while the file is busy
	if len(version) == 0 {
		c, cancel := context.WithCancel(context.Background())
		wait.UntilWithContext(c, func(ctx context.Context) {
			if err := os.Remove(filepath.Join(fc.storePath, key)); !isEphemeralError(err) {
				if err != nil {
					klog.V(5).InfoS("Failed to remove file", "err", err)
				}
				cancel()
			}
		}, 0)
		return nil
	}

	f, err := os.OpenFile(filepath.Join(fc.storePath, key), os.O_RDONLY, 0640)
	if err != nil {
		klog.V(2).InfoS("Failed to open file", "err", err)
		if os.IsNotExist(err) {
			return os.ErrNotExist
		} else if isEphemeralError(err) {
			return sumdb.ErrWriteConflict
		}
		return apis.ErrInternal
	}
	defer f.Close()

	lock, err := fileutil.NewLock(f)
	if err != nil {
		klog.V(2).InfoS("Failed to lock", "err", err)
		return sumdb.ErrWriteConflict
	}

	var target struct {
		runtime.ObjectMeta
	}
	err = json.NewDecoder(f).Decode(&target)
	if err != nil {
		_ = lock.Release()
		klog.V(2).InfoS("Failed to unmarshal", "err", err)
		return apis.ErrInternal
	}
	if target.Version != version {
		_ = lock.Release()
		return apis.ErrMismatch
	}
	_ = lock.Release()
	_ = f.Close()

	err = os.Remove(filepath.Join(fc.storePath, key))
	if err != nil {
		klog.V(2).InfoS("Failed to remove", "err", err)
		return apis.ErrInternal
	}
	return nil
}
