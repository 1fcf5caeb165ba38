package device

import (
	"meterbind/pkg/board"
	"meterbind/pkg/codegen"
	"meterbind/pkg/runtime"
	v1 "meterbind/pkg/v1"
)

// DeviceManager handles the records of one device type.
type DeviceManager interface {
	DecodeDevice(in map[string]interface{}) (v1.DeviceType, error)
	ValidateDevice(b *board.Board, deviceType v1.DeviceType) (runtime.Binding, error)
	GenerateDevice(p *codegen.Program, binding runtime.Binding) error
}
