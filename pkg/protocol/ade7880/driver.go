package ade7880

import (
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"meterbind/pkg/codegen"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
)

const (
	driverType   = "ade7880::ADE7880"
	driverHeader = `"esphome/components/ade7880/ade7880.h"`
	irqPinSlot   = "irq_pin"
)

var _ Driver = (*codegenDriver)(nil)

// codegenDriver emits the setter calls of an ade7880::ADE7880 object.
type codegenDriver struct {
	*codegen.Component
	program *codegen.Program
	set     sets.String
}

// NewDriverFactory returns a factory declaring drivers in p.
func NewDriverFactory(p *codegen.Program) DriverFactory {
	return func(id string) (Driver, error) {
		c, err := p.NewComponent(id, driverType)
		if err != nil {
			return nil, err
		}
		p.Include(driverHeader)
		return &codegenDriver{Component: c, program: p, set: sets.NewString()}, nil
	}
}

func (d *codegenDriver) claim(slot string) error {
	if d.set.Has(slot) {
		return errors.Wrapf(constant.ErrSlotAlreadySet, "%s of %s", slot, d.ID)
	}
	d.set.Insert(slot)
	return nil
}

func (d *codegenDriver) SetIRQPin(pin *runtime.Pin) error {
	if d.set.Has(irqPinSlot) {
		return d.claim(irqPinSlot)
	}
	v, err := d.program.DeclarePin(d.ID+"_"+irqPinSlot, pin)
	if err != nil {
		return err
	}
	if err := d.claim(irqPinSlot); err != nil {
		return err
	}
	d.Call("set_irq_pin", v)
	return nil
}

func (d *codegenDriver) setSensor(k ade7880.ChannelKind, s runtime.Endpoint) error {
	if err := d.claim(k.String()); err != nil {
		return err
	}
	d.Call("set_"+k.String()+"_sensor", codegen.Raw(s.GetID()))
	return nil
}

func (d *codegenDriver) SetVoltageASensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.VoltageA, s)
}

func (d *codegenDriver) SetVoltageBSensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.VoltageB, s)
}

func (d *codegenDriver) SetVoltageCSensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.VoltageC, s)
}

func (d *codegenDriver) SetCurrentASensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.CurrentA, s)
}

func (d *codegenDriver) SetCurrentBSensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.CurrentB, s)
}

func (d *codegenDriver) SetCurrentCSensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.CurrentC, s)
}

func (d *codegenDriver) SetActivePowerASensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.ActivePowerA, s)
}

func (d *codegenDriver) SetActivePowerBSensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.ActivePowerB, s)
}

func (d *codegenDriver) SetActivePowerCSensor(s runtime.Endpoint) error {
	return d.setSensor(ade7880.ActivePowerC, s)
}
