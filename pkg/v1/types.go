package v1

import (
	"encoding/json"
	"strconv"
)

// DeviceType is implemented by every raw device record a platform accepts.
type DeviceType interface {
	GetDeviceType() string
	GetID() string
}

// Manifest is a whole configuration: a board, the buses it declares and the
// device records to wire onto them.
type Manifest struct {
	Board   string                   `json:"board,omitempty" mapstructure:"board"`
	I2C     []*I2CBus                `json:"i2c,omitempty" mapstructure:"i2c"`
	ADE7880 []map[string]interface{} `json:"ade7880,omitempty" mapstructure:"ade7880"`
}

type I2CBus struct {
	ID        string   `json:"id" mapstructure:"id"`
	SDA       *PinSpec `json:"sda,omitempty" mapstructure:"sda"`
	SCL       *PinSpec `json:"scl,omitempty" mapstructure:"scl"`
	Frequency uint     `json:"frequency,omitempty" mapstructure:"frequency"` // Hz
}

// PinSpec accepts either the shorthand form (25, "GPIO25") or the full form
// {number, mode, inverted}.
type PinSpec struct {
	Number   string       `json:"number" mapstructure:"number"`
	Mode     *PinModeSpec `json:"mode,omitempty" mapstructure:"mode"`
	Inverted bool         `json:"inverted,omitempty" mapstructure:"inverted"`
}

type PinModeSpec struct {
	Input     bool `json:"input,omitempty" mapstructure:"input"`
	Output    bool `json:"output,omitempty" mapstructure:"output"`
	PullUp    bool `json:"pullup,omitempty" mapstructure:"pullup"`
	PullDown  bool `json:"pulldown,omitempty" mapstructure:"pulldown"`
	OpenDrain bool `json:"open_drain,omitempty" mapstructure:"open_drain"`
}

func (p *PinSpec) UnmarshalJSON(bytes []byte) error {
	var shorthand interface{}
	if err := json.Unmarshal(bytes, &shorthand); err != nil {
		return err
	}
	if number, ok := pinNumberString(shorthand); ok {
		p.Number = number
		return nil
	}

	var full struct {
		Number   interface{}  `json:"number"`
		Mode     *PinModeSpec `json:"mode,omitempty"`
		Inverted bool         `json:"inverted,omitempty"`
	}
	if err := json.Unmarshal(bytes, &full); err != nil {
		return err
	}
	p.Number, _ = pinNumberString(full.Number)
	p.Mode = full.Mode
	p.Inverted = full.Inverted
	return nil
}

func pinNumberString(v interface{}) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case string:
		return n, true
	}
	return "", false
}
