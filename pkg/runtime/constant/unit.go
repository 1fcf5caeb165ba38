package constant

import (
	"encoding/json"
	"fmt"
)

type Unit int8

const (
	UnitVolt Unit = iota
	UnitAmpere
	UnitWatt
)

var UnitToString = map[Unit]string{
	UnitVolt:   "V",
	UnitAmpere: "A",
	UnitWatt:   "W",
}

var StringToUnit = map[string]Unit{
	"V": UnitVolt,
	"A": UnitAmpere,
	"W": UnitWatt,
}

func (u Unit) String() string {
	return UnitToString[u]
}

func (u Unit) MarshalJSON() ([]byte, error) {
	if s, ok := UnitToString[u]; ok {
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown unit %d", u)
}

func (u *Unit) UnmarshalJSON(bytes []byte) error {
	var s string
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}

	v, ok := StringToUnit[s]
	if !ok {
		return fmt.Errorf("unknown unit %s", s)
	}
	*u = v
	return nil
}
