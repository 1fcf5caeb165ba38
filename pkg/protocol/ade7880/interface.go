package ade7880

import (
	"meterbind/pkg/runtime"
)

// Driver is the ADE7880 driver object of the generated program. Every slot
// accepts at most one value.
type Driver interface {
	runtime.PollingComponent
	runtime.BusDevice
	SetIRQPin(pin *runtime.Pin) error
	SetVoltageASensor(s runtime.Endpoint) error
	SetVoltageBSensor(s runtime.Endpoint) error
	SetVoltageCSensor(s runtime.Endpoint) error
	SetCurrentASensor(s runtime.Endpoint) error
	SetCurrentBSensor(s runtime.Endpoint) error
	SetCurrentCSensor(s runtime.Endpoint) error
	SetActivePowerASensor(s runtime.Endpoint) error
	SetActivePowerBSensor(s runtime.Endpoint) error
	SetActivePowerCSensor(s runtime.Endpoint) error
}

// DriverFactory constructs the driver object bound to id.
type DriverFactory func(id string) (Driver, error)
