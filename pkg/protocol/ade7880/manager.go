package ade7880

import (
	"k8s.io/klog/v2"
	"meterbind/pkg/board"
	"meterbind/pkg/codegen"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
)

type ADE7880DeviceManager struct {
}

func (m *ADE7880DeviceManager) DecodeDevice(in map[string]interface{}) (v1.DeviceType, error) {
	raw, err := Decode(in)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (m *ADE7880DeviceManager) ValidateDevice(b *board.Board, deviceType v1.DeviceType) (runtime.Binding, error) {
	raw, ok := deviceType.(*v1.ADE7880)
	if !ok {
		klog.V(2).InfoS("Unsupported device, type not ADE7880")
		return nil, constant.ErrDeviceType
	}
	cfg, err := NewValidator(b).Validate(raw)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (m *ADE7880DeviceManager) GenerateDevice(p *codegen.Program, binding runtime.Binding) error {
	cfg, ok := binding.(*ade7880.Config)
	if !ok {
		klog.V(2).InfoS("Unsupported binding, type not ADE7880")
		return constant.ErrDeviceType
	}
	return NewGenerator(p, NewDriverFactory(p)).Generate(cfg)
}
