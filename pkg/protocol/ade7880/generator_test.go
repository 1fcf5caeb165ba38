package ade7880

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
)

func validConfig(t *testing.T, raw *v1.ADE7880) *ade7880.Config {
	t.Helper()
	cfg, err := NewValidator(nil).Validate(raw)
	require.NoError(t, err)
	return cfg
}

func TestGenerateWithoutChannels(t *testing.T) {
	env := newFakeEnv()
	cfg := validConfig(t, &v1.ADE7880{ID: "meter"})

	require.NoError(t, env.generator().Generate(cfg))
	assert.Equal(t, []string{
		"construct(meter)",
		"register_component(meter, 1m0s)",
		`register_bus_device(meter, "", 0x38)`,
	}, env.rec.calls)
	assert.Empty(t, env.registrar.endpoints)
}

func TestGenerateChannelSubset(t *testing.T) {
	env := newFakeEnv()
	cfg := validConfig(t, &v1.ADE7880{
		ID:             "meter",
		IRQPin:         &v1.PinSpec{Number: "GPIO25"},
		Address:        intPtr(0x39),
		UpdateInterval: "10s",
		I2CID:          "bus_a",
		ActivePowerC:   &v1.Sensor{},
		VoltageA:       &v1.Sensor{Name: "Mains"},
		CurrentB:       &v1.Sensor{AccuracyDecimals: intPtr(3)},
	})

	require.NoError(t, env.generator().Generate(cfg))
	assert.Equal(t, []string{
		"construct(meter)",
		"register_component(meter, 10s)",
		`register_bus_device(meter, "bus_a", 0x39)`,
		"meter.set_irq_pin(25)",
		"new_endpoint(meter_voltage_a)",
		"meter.set_voltage_a_sensor(meter_voltage_a)",
		"new_endpoint(meter_current_b)",
		"meter.set_current_b_sensor(meter_current_b)",
		"new_endpoint(meter_active_power_c)",
		"meter.set_active_power_c_sensor(meter_active_power_c)",
	}, env.rec.calls)

	require.Len(t, env.drivers, 1)
	sensors := env.drivers[0].sensors
	require.Len(t, sensors, 3)
	assert.Equal(t, "Mains", sensors["voltage_a"].GetSpec().Name)
	assert.Equal(t, constant.UnitVolt, sensors["voltage_a"].GetSpec().Unit)
	assert.Equal(t, constant.UnitWatt, sensors["active_power_c"].GetSpec().Unit)
}

func TestGenerateCurrentBPrecision(t *testing.T) {
	env := newFakeEnv()
	cfg := validConfig(t, &v1.ADE7880{ID: "meter", CurrentB: &v1.Sensor{AccuracyDecimals: intPtr(3)}})

	require.NoError(t, env.generator().Generate(cfg))
	sensors := env.drivers[0].sensors
	require.Len(t, sensors, 1)
	spec := sensors["current_b"].GetSpec()
	assert.Equal(t, constant.UnitAmpere, spec.Unit)
	assert.Equal(t, constant.DeviceClassCurrent, spec.DeviceClass)
	assert.Equal(t, 3, spec.AccuracyDecimals)
}

func TestGenerateAllChannelsUseMatchingSlots(t *testing.T) {
	env := newFakeEnv()
	raw := &v1.ADE7880{ID: "meter"}
	for _, k := range ade7880.Channels() {
		setSensor(raw, k, &v1.Sensor{})
	}
	cfg := validConfig(t, raw)

	require.NoError(t, env.generator().Generate(cfg))
	sensors := env.drivers[0].sensors
	require.Len(t, sensors, ade7880.NumChannels)
	for _, k := range ade7880.Channels() {
		spec := sensors[k.String()].GetSpec()
		assert.Equal(t, SensorID("meter", k), spec.ID)
		assert.Equal(t, k.Profile().Unit, spec.Unit, k.String())
		assert.Equal(t, k.Profile().DeviceClass, spec.DeviceClass, k.String())
	}
}

func TestGenerateStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		failAt    string
		wantStep  Step
		wantChan  string
		wantCalls int
	}{
		{name: "construct", failAt: "construct(meter)", wantStep: StepConstruct, wantCalls: 1},
		{name: "scheduler", failAt: "register_component(meter, 1m0s)", wantStep: StepRegisterComponent, wantCalls: 2},
		{name: "bus", failAt: `register_bus_device(meter, "", 0x38)`, wantStep: StepRegisterBusDevice, wantCalls: 3},
		{name: "irq", failAt: "meter.set_irq_pin(25)", wantStep: StepAttachIRQPin, wantCalls: 4},
		{name: "endpoint", failAt: "new_endpoint(meter_voltage_a)", wantStep: StepAttachChannel, wantChan: "voltage_a", wantCalls: 5},
		{name: "slot", failAt: "meter.set_current_b_sensor(meter_current_b)", wantStep: StepAttachChannel, wantChan: "current_b", wantCalls: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFakeEnv()
			env.rec.failAt = tt.failAt
			env.rec.err = boom
			cfg := validConfig(t, &v1.ADE7880{
				ID:       "meter",
				IRQPin:   &v1.PinSpec{Number: "25"},
				VoltageA: &v1.Sensor{},
				CurrentB: &v1.Sensor{},
			})

			err := env.generator().Generate(cfg)
			require.Error(t, err)
			var gerr *GenerationError
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tt.wantStep, gerr.Step)
			assert.Equal(t, tt.wantChan, gerr.Channel)
			assert.True(t, errors.Is(err, boom))
			assert.Len(t, env.rec.calls, tt.wantCalls)
		})
	}
}

func TestGenerationErrorMessage(t *testing.T) {
	err := &GenerationError{ID: "meter", Step: StepAttachChannel, Channel: "current_b", Err: constant.ErrSlotAlreadySet}
	assert.Equal(t, `generate ade7880 "meter": step 5 (attach current_b): slot already set`, err.Error())

	err = &GenerationError{ID: "meter", Step: StepRegisterBusDevice, Err: constant.ErrAddressInUse}
	assert.Equal(t, `generate ade7880 "meter": step 3 (register bus device): bus address already in use`, err.Error())
}

func TestGenerateTwoRecordsAreIndependent(t *testing.T) {
	env := newFakeEnv()
	g := env.generator()
	for _, id := range []string{"meter_1", "meter_2"} {
		cfg := validConfig(t, &v1.ADE7880{ID: id, VoltageA: &v1.Sensor{}, CurrentA: &v1.Sensor{}})
		require.NoError(t, g.Generate(cfg))
	}

	require.Len(t, env.drivers, 2)
	require.Len(t, env.registrar.endpoints, 4)
	seen := map[runtime.Endpoint]bool{}
	for _, d := range env.drivers {
		require.Len(t, d.sensors, 2)
		for _, e := range d.sensors {
			assert.False(t, seen[e], "endpoint %s shared", e.GetID())
			seen[e] = true
		}
	}
	assert.Equal(t, "meter_1_voltage_a", env.drivers[0].sensors["voltage_a"].GetID())
	assert.Equal(t, "meter_2_voltage_a", env.drivers[1].sensors["voltage_a"].GetID())
}

func TestGenerateSkipsIRQPinWhenAbsent(t *testing.T) {
	env := newFakeEnv()
	cfg := validConfig(t, &v1.ADE7880{ID: "meter", UpdateInterval: "1min"})
	require.NoError(t, env.generator().Generate(cfg))
	assert.Nil(t, env.drivers[0].irq)
	assert.Equal(t, time.Minute, cfg.UpdateInterval)
}
