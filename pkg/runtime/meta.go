package runtime

import (
	"time"
)

// Component is anything the generated program holds under an ID.
type Component interface {
	GetID() string
}

// PollingComponent is invoked by the runtime scheduler on a fixed period.
type PollingComponent interface {
	Component
	SetUpdateInterval(interval time.Duration) error
}

// BusDevice is a peripheral addressed on a shared I²C bus.
type BusDevice interface {
	Component
	SetBus(busID string) error
	SetBusAddress(address uint8) error
}

// Endpoint receives and publishes the readings of one channel.
type Endpoint interface {
	Component
	GetSpec() *OutputChannelSpec
}

// Registrar is the generation environment a binding is emitted into.
type Registrar interface {
	RegisterComponent(c PollingComponent, interval time.Duration) error
	RegisterBusDevice(d BusDevice, busID string, address uint8) error
	NewEndpoint(spec *OutputChannelSpec) (Endpoint, error)
}

// Binding is a validated, fully defaulted device record ready to be
// generated.
type Binding interface {
	GetID() string
	GetDeviceType() string
}
