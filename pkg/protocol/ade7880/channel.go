package ade7880

import (
	"fmt"

	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
	v1 "meterbind/pkg/v1"
)

// slots binds each channel to its driver attachment method.
var slots = [ade7880.NumChannels]func(Driver, runtime.Endpoint) error{
	ade7880.VoltageA:     Driver.SetVoltageASensor,
	ade7880.VoltageB:     Driver.SetVoltageBSensor,
	ade7880.VoltageC:     Driver.SetVoltageCSensor,
	ade7880.CurrentA:     Driver.SetCurrentASensor,
	ade7880.CurrentB:     Driver.SetCurrentBSensor,
	ade7880.CurrentC:     Driver.SetCurrentCSensor,
	ade7880.ActivePowerA: Driver.SetActivePowerASensor,
	ade7880.ActivePowerB: Driver.SetActivePowerBSensor,
	ade7880.ActivePowerC: Driver.SetActivePowerCSensor,
}

// sensorFields reads each channel's optional sub-record from a raw record.
var sensorFields = [ade7880.NumChannels]func(*v1.ADE7880) *v1.Sensor{
	ade7880.VoltageA:     func(a *v1.ADE7880) *v1.Sensor { return a.VoltageA },
	ade7880.VoltageB:     func(a *v1.ADE7880) *v1.Sensor { return a.VoltageB },
	ade7880.VoltageC:     func(a *v1.ADE7880) *v1.Sensor { return a.VoltageC },
	ade7880.CurrentA:     func(a *v1.ADE7880) *v1.Sensor { return a.CurrentA },
	ade7880.CurrentB:     func(a *v1.ADE7880) *v1.Sensor { return a.CurrentB },
	ade7880.CurrentC:     func(a *v1.ADE7880) *v1.Sensor { return a.CurrentC },
	ade7880.ActivePowerA: func(a *v1.ADE7880) *v1.Sensor { return a.ActivePowerA },
	ade7880.ActivePowerB: func(a *v1.ADE7880) *v1.Sensor { return a.ActivePowerB },
	ade7880.ActivePowerC: func(a *v1.ADE7880) *v1.Sensor { return a.ActivePowerC },
}

func init() {
	for _, k := range ade7880.Channels() {
		if slots[k] == nil || sensorFields[k] == nil {
			panic(fmt.Sprintf("ade7880: channel %s is not bound", k))
		}
	}
}

// Attach hands e to the driver slot of channel k.
func Attach(d Driver, k ade7880.ChannelKind, e runtime.Endpoint) error {
	if !k.Valid() {
		return fmt.Errorf("ade7880: unknown channel %d", k)
	}
	return slots[k](d, e)
}

func sensorOf(raw *v1.ADE7880, k ade7880.ChannelKind) *v1.Sensor {
	return sensorFields[k](raw)
}
