package runtime

import (
	"meterbind/pkg/runtime"
	"time"
)

var _ runtime.Binding = (*Config)(nil)

const DeviceType = "ade7880"

// Config is a validated ADE7880 record with every default applied.
type Config struct {
	ID             string                                 `json:"id"`
	BusID          string                                 `json:"busId,omitempty"` // empty selects the default bus
	IRQPin         *runtime.Pin                           `json:"irqPin,omitempty"`
	Address        uint8                                  `json:"address"`
	UpdateInterval time.Duration                          `json:"updateInterval"`
	Channels       [NumChannels]*runtime.OutputChannelSpec `json:"channels"` // nil when the channel is not declared
}

func (c *Config) GetID() string {
	return c.ID
}

func (c *Config) GetDeviceType() string {
	return DeviceType
}

func (c *Config) Channel(k ChannelKind) *runtime.OutputChannelSpec {
	if !k.Valid() {
		return nil
	}
	return c.Channels[k]
}

// PresentChannels lists the declared channels in declaration order.
func (c *Config) PresentChannels() []ChannelKind {
	var kinds []ChannelKind
	for _, k := range Channels() {
		if c.Channels[k] != nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
