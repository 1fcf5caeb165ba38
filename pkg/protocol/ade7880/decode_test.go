package ade7880

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime/constant"
	"sigs.k8s.io/yaml"
)

func decodeYAML(t *testing.T, doc string) map[string]interface{} {
	t.Helper()
	in := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal([]byte(doc), &in))
	return in
}

func TestDecode(t *testing.T) {
	raw, err := Decode(decodeYAML(t, `
id: meter_main
irq_pin: GPIO25
address: 0x39
update_interval: 30s
voltage_a:
  name: Mains V L1
current_b:
  accuracy_decimals: 3
  filters:
    - multiply: 2
    - sliding_window_moving_average:
        window_size: 10
`))
	require.NoError(t, err)
	assert.Equal(t, "meter_main", raw.ID)
	assert.Equal(t, "GPIO25", raw.IRQPin.Number)
	assert.Equal(t, 0x39, *raw.Address)
	assert.Equal(t, "30s", raw.UpdateInterval)
	assert.Equal(t, "Mains V L1", raw.VoltageA.Name)
	assert.Equal(t, 3, *raw.CurrentB.AccuracyDecimals)
	require.Len(t, raw.CurrentB.Filters, 2)
	assert.Equal(t, 2.0, *raw.CurrentB.Filters[0].Multiply)
	assert.Equal(t, 10, *raw.CurrentB.Filters[1].SlidingWindowMovingAverage.WindowSize)
	assert.Nil(t, raw.VoltageB)
}

func TestDecodePinForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "number", doc: "id: m\nirq_pin: 25", want: "25"},
		{name: "string", doc: "id: m\nirq_pin: GPIO25", want: "GPIO25"},
		{name: "full", doc: "id: m\nirq_pin:\n  number: 25\n  mode:\n    input: true\n    pullup: true\n  inverted: true", want: "25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(decodeYAML(t, tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw.IRQPin.Number)
		})
	}

	raw, err := Decode(decodeYAML(t, "id: m\nirq_pin:\n  number: 25\n  mode:\n    pullup: true\n  inverted: true"))
	require.NoError(t, err)
	assert.True(t, raw.IRQPin.Inverted)
	assert.True(t, raw.IRQPin.Mode.PullUp)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(decodeYAML(t, `
id: meter
power_factor_a: {}
voltage_a:
  unit: V
`))
	verr := validationError(t, err)
	require.Len(t, verr.Causes, 2)
	assert.Equal(t, constant.ErrMalformedRecord, verr.Causes[0].Reason)
	assert.Equal(t, "power_factor_a", verr.Causes[0].Field.Field)
	assert.Equal(t, constant.ErrInvalidChannelSpec, verr.Causes[1].Reason)
	assert.Equal(t, "voltage_a", verr.Causes[1].Channel)
	assert.Equal(t, "voltage_a.unit", verr.Causes[1].Field.Field)
	assert.Equal(t, "meter", verr.ID)
}

func TestDecodeRejectsWrongTypes(t *testing.T) {
	_, err := Decode(decodeYAML(t, `
id: meter
address: nowhere
`))
	assert.True(t, errors.Is(err, constant.ErrInvalidBusAddress))

	_, err = Decode(decodeYAML(t, `
id: meter
current_a:
  accuracy_decimals: [1, 2]
`))
	assert.True(t, errors.Is(err, constant.ErrInvalidChannelSpec))
}

func TestDecodeAndValidate(t *testing.T) {
	cfg, err := NewValidator(nil).DecodeAndValidate(decodeYAML(t, "id: meter\naddress: \"0x40\"\nirq_pin: 25"))
	require.NoError(t, err)
	assert.Equal(t, uint8(0x40), cfg.Address)
	assert.Equal(t, 25, cfg.IRQPin.Number)

	_, err = NewValidator(nil).DecodeAndValidate(decodeYAML(t, "id: meter\naddress: 0x78"))
	assert.True(t, errors.Is(err, constant.ErrInvalidBusAddress))
}

func TestDecodeEmptyChannelKey(t *testing.T) {
	for _, doc := range []string{"id: m\nvoltage_a:\n", "id: m\nvoltage_a: null\ncurrent_c: {}\n"} {
		raw, err := Decode(decodeYAML(t, doc))
		require.NoError(t, err, doc)
		require.NotNil(t, raw.VoltageA, doc)
		assert.Nil(t, raw.VoltageB, doc)
	}

	cfg, err := NewValidator(nil).DecodeAndValidate(decodeYAML(t, "id: m\nvoltage_a:\n"))
	require.NoError(t, err)
	assert.Equal(t, []ade7880.ChannelKind{ade7880.VoltageA}, cfg.PresentChannels())
	spec := cfg.Channel(ade7880.VoltageA)
	assert.Equal(t, "m_voltage_a", spec.ID)
	assert.Equal(t, "Voltage A", spec.Name)
	assert.Equal(t, constant.UnitVolt, spec.Unit)
}

func TestDecodeRejectsFractionalIntegers(t *testing.T) {
	_, err := Decode(decodeYAML(t, "id: m\naddress: 56.9\n"))
	verr := validationError(t, err)
	require.Len(t, verr.Causes, 1)
	assert.True(t, errors.Is(err, constant.ErrInvalidBusAddress))
	assert.Equal(t, "address", verr.First().Field.Field)

	_, err = Decode(decodeYAML(t, "id: m\ncurrent_b:\n  accuracy_decimals: 2.7\n"))
	verr = validationError(t, err)
	assert.True(t, errors.Is(err, constant.ErrInvalidChannelSpec))
	assert.Equal(t, "current_b", verr.First().Channel)
	assert.Equal(t, "current_b.accuracy_decimals", verr.First().Field.Field)

	raw, err := Decode(decodeYAML(t, "id: m\naddress: 56.0\ncurrent_b:\n  accuracy_decimals: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 56, *raw.Address)
	assert.Equal(t, 2, *raw.CurrentB.AccuracyDecimals)
}
