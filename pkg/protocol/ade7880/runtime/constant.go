package runtime

import (
	"meterbind/pkg/runtime/constant"
)

// ChannelKind is one phase × quantity measurement channel of the meter.
// The declaration order is the order channels are validated and attached.
type ChannelKind uint8

const (
	VoltageA ChannelKind = iota
	VoltageB
	VoltageC
	CurrentA
	CurrentB
	CurrentC
	ActivePowerA
	ActivePowerB
	ActivePowerC

	NumChannels = int(ActivePowerC) + 1
)

// ChannelProfile is the fixed metadata of a channel.
type ChannelProfile struct {
	Key              string
	Name             string
	Unit             constant.Unit
	AccuracyDecimals int
	DeviceClass      constant.DeviceClass
	StateClass       constant.StateClass
}

var channelProfiles = [NumChannels]ChannelProfile{
	VoltageA:     {Key: "voltage_a", Name: "Voltage A", Unit: constant.UnitVolt, AccuracyDecimals: 1, DeviceClass: constant.DeviceClassVoltage, StateClass: constant.StateClassMeasurement},
	VoltageB:     {Key: "voltage_b", Name: "Voltage B", Unit: constant.UnitVolt, AccuracyDecimals: 1, DeviceClass: constant.DeviceClassVoltage, StateClass: constant.StateClassMeasurement},
	VoltageC:     {Key: "voltage_c", Name: "Voltage C", Unit: constant.UnitVolt, AccuracyDecimals: 1, DeviceClass: constant.DeviceClassVoltage, StateClass: constant.StateClassMeasurement},
	CurrentA:     {Key: "current_a", Name: "Current A", Unit: constant.UnitAmpere, AccuracyDecimals: 2, DeviceClass: constant.DeviceClassCurrent, StateClass: constant.StateClassMeasurement},
	CurrentB:     {Key: "current_b", Name: "Current B", Unit: constant.UnitAmpere, AccuracyDecimals: 2, DeviceClass: constant.DeviceClassCurrent, StateClass: constant.StateClassMeasurement},
	CurrentC:     {Key: "current_c", Name: "Current C", Unit: constant.UnitAmpere, AccuracyDecimals: 2, DeviceClass: constant.DeviceClassCurrent, StateClass: constant.StateClassMeasurement},
	ActivePowerA: {Key: "active_power_a", Name: "Active Power A", Unit: constant.UnitWatt, AccuracyDecimals: 1, DeviceClass: constant.DeviceClassPower, StateClass: constant.StateClassMeasurement},
	ActivePowerB: {Key: "active_power_b", Name: "Active Power B", Unit: constant.UnitWatt, AccuracyDecimals: 1, DeviceClass: constant.DeviceClassPower, StateClass: constant.StateClassMeasurement},
	ActivePowerC: {Key: "active_power_c", Name: "Active Power C", Unit: constant.UnitWatt, AccuracyDecimals: 1, DeviceClass: constant.DeviceClassPower, StateClass: constant.StateClassMeasurement},
}

func (k ChannelKind) Valid() bool {
	return int(k) < NumChannels
}

func (k ChannelKind) Profile() ChannelProfile {
	return channelProfiles[k]
}

func (k ChannelKind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return channelProfiles[k].Key
}

// Channels returns every kind in declaration order.
func Channels() []ChannelKind {
	kinds := make([]ChannelKind, NumChannels)
	for i := range kinds {
		kinds[i] = ChannelKind(i)
	}
	return kinds
}
