package device

import (
	"fmt"
	"os"
	"path/filepath"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"
	"meterbind/pkg/board"
	"meterbind/pkg/codegen"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
	"sigs.k8s.io/yaml"
)

type Option func(*Manager)

func WithBoard(name string) Option {
	return func(m *Manager) {
		m.board = name
	}
}

func WithDeviceManager(deviceType string, dm DeviceManager) Option {
	return func(m *Manager) {
		m.deviceManager[deviceType] = dm
	}
}

// Manager turns whole manifests into programs.
type Manager struct {
	board         string
	deviceManager map[string]DeviceManager
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		board:         board.DefaultBoard,
		deviceManager: make(map[string]DeviceManager, len(DeviceManagers)),
	}
	for dt, dm := range DeviceManagers {
		m.deviceManager[dt] = dm
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result is the outcome of a build. Program holds everything that was
// generated, including the records that succeeded when others failed.
type Result struct {
	Board    string
	Program  *codegen.Program
	Bindings []runtime.Binding
}

type record struct {
	dm      DeviceManager
	binding runtime.Binding
}

// Build validates every bus and record of the manifest, then generates each
// valid record into one program. Every failure is returned in one aggregate
// error; a failing record does not stop the others.
func (m *Manager) Build(manifest *v1.Manifest) (*Result, error) {
	boardName := manifest.Board
	if boardName == "" {
		boardName = m.board
	}
	b, ok := board.Lookup(boardName)
	if !ok {
		return nil, fmt.Errorf("%w %q, expected one of %v", constant.ErrUnknownBoard, boardName, board.Names())
	}

	res := &Result{Board: b.Name, Program: codegen.NewProgram()}
	var errs []error
	errs = append(errs, declareBuses(res.Program, b, manifest.I2C)...)

	var records []record
	for _, dr := range []struct {
		deviceType string
		raws       []map[string]interface{}
	}{
		{deviceType: v1.DeviceTypeADE7880, raws: manifest.ADE7880},
	} {
		dm, ok := m.deviceManager[dr.deviceType]
		if !ok && len(dr.raws) > 0 {
			errs = append(errs, fmt.Errorf("%w %q", constant.ErrDeviceType, dr.deviceType))
			continue
		}
		for _, raw := range dr.raws {
			deviceType, err := dm.DecodeDevice(raw)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			binding, err := dm.ValidateDevice(b, deviceType)
			if err != nil {
				klog.V(3).InfoS("Rejected device", "deviceType", dr.deviceType, "id", deviceType.GetID(), "err", err)
				errs = append(errs, err)
				continue
			}
			records = append(records, record{dm: dm, binding: binding})
		}
	}

	for _, r := range records {
		if err := r.dm.GenerateDevice(res.Program, r.binding); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Bindings = append(res.Bindings, r.binding)
		klog.V(4).InfoS("Generated device", "deviceType", r.binding.GetDeviceType(), "id", r.binding.GetID())
	}

	return res, utilerrors.NewAggregate(errs)
}

// declareBuses declares the manifest's buses, or the board's default bus when
// none is listed.
func declareBuses(p *codegen.Program, b *board.Board, buses []*v1.I2CBus) []error {
	if len(buses) == 0 {
		if err := p.DeclareI2CBus(codegen.DefaultBusID, b.DefaultSDA, b.DefaultSCL, DefaultI2CFrequency); err != nil {
			return []error{err}
		}
		return nil
	}

	var errs []error
	for i, bus := range buses {
		fldPath := field.NewPath("i2c").Index(i)
		if bus == nil {
			errs = append(errs, field.Required(fldPath, ""))
			continue
		}
		verr := &runtime.ValidationError{DeviceType: i2cDeviceType, ID: bus.ID}
		verr.Add(constant.ErrInvalidBusID, "", runtime.ValidateIdentifier(bus.ID, fldPath.Child("id"))...)
		sda, fe := b.ValidatePin(bus.SDA, board.BusLine, fldPath.Child("sda"))
		if fe != nil {
			verr.Add(constant.ErrInvalidPinSpec, "", fe)
		}
		scl, fe := b.ValidatePin(bus.SCL, board.BusLine, fldPath.Child("scl"))
		if fe != nil {
			verr.Add(constant.ErrInvalidPinSpec, "", fe)
		}
		if sda != nil && scl != nil && sda.Number == scl.Number {
			verr.Add(constant.ErrInvalidPinSpec, "", field.Duplicate(fldPath.Child("scl"), bus.SCL.Number))
		}
		if err := verr.ErrorOrNil(); err != nil {
			errs = append(errs, err)
			continue
		}

		frequency := bus.Frequency
		if frequency == 0 {
			frequency = DefaultI2CFrequency
		}
		if err := p.DeclareI2CBus(bus.ID, sda.Number, scl.Number, frequency); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ParseManifest reads a YAML or JSON manifest.
func ParseManifest(data []byte) (*v1.Manifest, error) {
	manifest := &v1.Manifest{}
	if err := yaml.UnmarshalStrict(data, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func LoadManifest(path string) (*v1.Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		klog.ErrorS(err, "Failed to read manifest", "file", abs)
		return nil, err
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		klog.ErrorS(err, "Failed to parse manifest", "file", abs)
		return nil, err
	}
	return manifest, nil
}
