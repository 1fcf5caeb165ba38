package ade7880

import (
	"fmt"
	"time"

	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
)

// recorder collects every collaborator call in order.
type recorder struct {
	calls  []string
	failAt string
	err    error
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	if call == r.failAt {
		return r.err
	}
	return nil
}

type fakeEndpoint struct {
	spec *runtime.OutputChannelSpec
}

func (e *fakeEndpoint) GetID() string                       { return e.spec.ID }
func (e *fakeEndpoint) GetSpec() *runtime.OutputChannelSpec { return e.spec }

type fakeRegistrar struct {
	*recorder
	endpoints []*fakeEndpoint
}

func (r *fakeRegistrar) RegisterComponent(c runtime.PollingComponent, interval time.Duration) error {
	return r.record(fmt.Sprintf("register_component(%s, %s)", c.GetID(), interval))
}

func (r *fakeRegistrar) RegisterBusDevice(d runtime.BusDevice, busID string, address uint8) error {
	return r.record(fmt.Sprintf("register_bus_device(%s, %q, 0x%02X)", d.GetID(), busID, address))
}

func (r *fakeRegistrar) NewEndpoint(spec *runtime.OutputChannelSpec) (runtime.Endpoint, error) {
	if err := r.record(fmt.Sprintf("new_endpoint(%s)", spec.ID)); err != nil {
		return nil, err
	}
	e := &fakeEndpoint{spec: spec}
	r.endpoints = append(r.endpoints, e)
	return e, nil
}

type fakeDriver struct {
	*recorder
	id      string
	irq     *runtime.Pin
	sensors map[string]runtime.Endpoint
}

func (d *fakeDriver) GetID() string { return d.id }

func (d *fakeDriver) SetUpdateInterval(time.Duration) error { return nil }
func (d *fakeDriver) SetBus(string) error                  { return nil }
func (d *fakeDriver) SetBusAddress(uint8) error            { return nil }

func (d *fakeDriver) SetIRQPin(pin *runtime.Pin) error {
	if d.irq != nil {
		return constant.ErrSlotAlreadySet
	}
	d.irq = pin
	return d.record(fmt.Sprintf("%s.set_irq_pin(%d)", d.id, pin.Number))
}

func (d *fakeDriver) attach(slot string, e runtime.Endpoint) error {
	if _, ok := d.sensors[slot]; ok {
		return constant.ErrSlotAlreadySet
	}
	d.sensors[slot] = e
	return d.record(fmt.Sprintf("%s.set_%s_sensor(%s)", d.id, slot, e.GetID()))
}

func (d *fakeDriver) SetVoltageASensor(e runtime.Endpoint) error     { return d.attach("voltage_a", e) }
func (d *fakeDriver) SetVoltageBSensor(e runtime.Endpoint) error     { return d.attach("voltage_b", e) }
func (d *fakeDriver) SetVoltageCSensor(e runtime.Endpoint) error     { return d.attach("voltage_c", e) }
func (d *fakeDriver) SetCurrentASensor(e runtime.Endpoint) error     { return d.attach("current_a", e) }
func (d *fakeDriver) SetCurrentBSensor(e runtime.Endpoint) error     { return d.attach("current_b", e) }
func (d *fakeDriver) SetCurrentCSensor(e runtime.Endpoint) error     { return d.attach("current_c", e) }
func (d *fakeDriver) SetActivePowerASensor(e runtime.Endpoint) error { return d.attach("active_power_a", e) }
func (d *fakeDriver) SetActivePowerBSensor(e runtime.Endpoint) error { return d.attach("active_power_b", e) }
func (d *fakeDriver) SetActivePowerCSensor(e runtime.Endpoint) error { return d.attach("active_power_c", e) }

type fakeEnv struct {
	rec       *recorder
	registrar *fakeRegistrar
	drivers   []*fakeDriver
}

func newFakeEnv() *fakeEnv {
	rec := &recorder{}
	return &fakeEnv{rec: rec, registrar: &fakeRegistrar{recorder: rec}}
}

func (env *fakeEnv) factory(id string) (Driver, error) {
	if err := env.rec.record(fmt.Sprintf("construct(%s)", id)); err != nil {
		return nil, err
	}
	d := &fakeDriver{recorder: env.rec, id: id, sensors: map[string]runtime.Endpoint{}}
	env.drivers = append(env.drivers, d)
	return d, nil
}

func (env *fakeEnv) generator() *Generator {
	return NewGenerator(env.registrar, env.factory)
}
