package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"k8s.io/klog/v2"
	"meterbind/pkg/apis"
	"meterbind/pkg/device"
	"meterbind/pkg/runtime"
	"meterbind/pkg/storage"
	"meterbind/pkg/utils/uuidutil"
	v1 "meterbind/pkg/v1"
)

// Build is one generated program together with the bindings it contains.
type Build struct {
	runtime.ObjectMeta
	Board   string            `json:"board"`
	Devices []runtime.Binding `json:"devices,omitempty"`
	Source  string            `json:"source,omitempty"`
}

type BuildList struct {
	Builds []*Build `json:"builds"`
}

// record is what a store keeps of a build. Bindings and source are
// regenerated from the manifest on load.
type record struct {
	runtime.ObjectMeta
	Manifest *v1.Manifest `json:"manifest"`
}

// Store persists builds across restarts.
type Store interface {
	storage.Creater
	storage.Getter
	storage.Lister
	storage.Deleter
}

type Option func(*Manager)

func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// Manager keeps the builds created through the API in memory, and in a store
// when one is configured.
type Manager struct {
	mu      *sync.RWMutex
	builds  map[string]*Build
	version *atomic.Uint64
	devices *device.Manager
	store   Store
}

func NewManager(devices *device.Manager, opts ...Option) *Manager {
	m := &Manager{
		mu:      &sync.RWMutex{},
		builds:  make(map[string]*Build),
		version: atomic.NewUint64(0),
		devices: devices,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load regenerates the builds kept in the store. Records that no longer
// generate are skipped.
func (m *Manager) Load() error {
	if m.store == nil {
		return nil
	}
	files, err := m.store.List(storage.Builds)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range files {
		data, err := m.store.Get(f.Path)
		if err != nil {
			return err
		}
		r := &record{}
		if err := json.Unmarshal(data, r); err != nil {
			klog.ErrorS(err, "Skipped unreadable build", "path", f.Path)
			continue
		}
		b, err := m.generate(r.ObjectMeta, r.Manifest)
		if err != nil {
			klog.ErrorS(err, "Skipped build that no longer generates", "buildId", r.ID)
			continue
		}
		m.builds[b.ID] = b
		if ver, err := strconv.ParseUint(b.Version, 10, 64); err == nil && ver > m.version.Load() {
			m.version.Store(ver)
		}
	}
	klog.V(1).InfoS("Loaded builds", "count", len(m.builds))
	return nil
}

func (m *Manager) generate(meta runtime.ObjectMeta, manifest *v1.Manifest) (*Build, error) {
	res, err := m.devices.Build(manifest)
	if err != nil {
		return nil, err
	}

	var source strings.Builder
	if err := res.Program.Render(&source); err != nil {
		return nil, errors.Wrap(apis.ErrInternal, err.Error())
	}
	return &Build{
		ObjectMeta: meta,
		Board:      res.Board,
		Devices:    res.Bindings,
		Source:     source.String(),
	}, nil
}

// CreateBuild generates manifest and keeps the result. Names are optional but
// unique among the kept builds.
func (m *Manager) CreateBuild(name string, manifest *v1.Manifest) (*Build, error) {
	b, err := m.generate(runtime.ObjectMeta{
		Name:    name,
		ID:      uuidutil.UUID(),
		ModTime: time.Now(),
	}, manifest)
	if err != nil {
		klog.V(2).InfoS("Failed to build manifest", "name", name, "err", err)
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(name) > 0 {
		for _, other := range m.builds {
			if other.Name == name {
				return nil, errors.Wrapf(os.ErrExist, "build %q", name)
			}
		}
	}
	b.Version = strconv.FormatUint(m.version.Inc(), 10)
	if m.store != nil {
		if _, err := m.store.Create(buildKey(b.ID), &record{ObjectMeta: b.ObjectMeta, Manifest: manifest}); err != nil {
			klog.ErrorS(err, "Failed to store build", "buildId", b.ID)
			return nil, errors.Wrap(apis.ErrInternal, err.Error())
		}
	}
	m.builds[b.ID] = b
	klog.V(2).InfoS("Created build", "buildId", b.ID, "devices", len(b.Devices))
	return b, nil
}

func (m *Manager) ListBuilds(exploded bool) []*Build {
	m.mu.RLock()
	defer m.mu.RUnlock()

	builds := make([]*Build, 0, len(m.builds))
	for _, b := range m.builds {
		if !exploded {
			b = fold(b)
		}
		builds = append(builds, b)
	}
	// descend
	sort.SliceStable(builds, func(i, j int) bool {
		return builds[i].ModTime.After(builds[j].ModTime)
	})
	return builds
}

func (m *Manager) GetBuildById(id string, exploded bool) (*Build, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.builds[id]
	if !ok {
		return nil, os.ErrNotExist
	}
	if !exploded {
		return fold(b), nil
	}
	return b, nil
}

func (m *Manager) DeleteBuild(id string, version string) (*Build, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.builds[id]
	if !ok {
		return nil, os.ErrNotExist
	}
	if b.Version != version {
		return nil, apis.ErrMismatch
	}
	if m.store != nil {
		if err := m.store.Delete(buildKey(id), version); err != nil {
			klog.V(2).InfoS("Failed to delete stored build", "buildId", id, "err", err)
			return nil, err
		}
	}
	delete(m.builds, id)
	klog.V(2).InfoS("Deleted build", "buildId", id)
	return b, nil
}

// fold drops the generated source.
func fold(b *Build) *Build {
	return &Build{
		ObjectMeta: b.ObjectMeta,
		Board:      b.Board,
		Devices:    b.Devices,
	}
}

func buildKey(id string) string {
	return filepath.Join(storage.Builds, id)
}
