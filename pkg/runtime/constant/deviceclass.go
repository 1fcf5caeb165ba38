package constant

import (
	"encoding/json"
	"fmt"
)

// DeviceClass is the physical quantity a measurement endpoint reports.
type DeviceClass int8

const (
	DeviceClassVoltage DeviceClass = iota
	DeviceClassCurrent
	DeviceClassPower
)

var DeviceClassToString = map[DeviceClass]string{
	DeviceClassVoltage: "voltage",
	DeviceClassCurrent: "current",
	DeviceClassPower:   "power",
}

var StringToDeviceClass = map[string]DeviceClass{
	"voltage": DeviceClassVoltage,
	"current": DeviceClassCurrent,
	"power":   DeviceClassPower,
}

func (dc DeviceClass) String() string {
	return DeviceClassToString[dc]
}

func (dc DeviceClass) MarshalJSON() ([]byte, error) {
	if s, ok := DeviceClassToString[dc]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown device class %d", dc)
}

func (dc *DeviceClass) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToDeviceClass[s]
	if !ok {
		return fmt.Errorf("unknown device class %s", s)
	}
	*dc = v
	return nil
}

// StateClass is the aggregation semantics of a measurement endpoint.
type StateClass int8

const (
	StateClassMeasurement StateClass = iota
	StateClassTotal
	StateClassTotalIncreasing
)

var StateClassToString = map[StateClass]string{
	StateClassMeasurement:     "measurement",
	StateClassTotal:           "total",
	StateClassTotalIncreasing: "total_increasing",
}

var StringToStateClass = map[string]StateClass{
	"measurement":      StateClassMeasurement,
	"total":            StateClassTotal,
	"total_increasing": StateClassTotalIncreasing,
}

func (sc StateClass) String() string {
	return StateClassToString[sc]
}

func (sc StateClass) MarshalJSON() ([]byte, error) {
	if s, ok := StateClassToString[sc]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown state class %d", sc)
}

func (sc *StateClass) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToStateClass[s]
	if !ok {
		return fmt.Errorf("unknown state class %s", s)
	}
	*sc = v
	return nil
}
