package constant

import (
	"encoding/json"
	"sort"
	"strings"
)

// PinMode is a set of electrical capabilities, used both for what a board pin
// supports and for what a configuration requests from it.
type PinMode uint8

const (
	PinModeInput PinMode = 1 << iota
	PinModeOutput
	PinModePullUp
	PinModePullDown
	PinModeOpenDrain
	PinModeInterrupt
)

var PinModeToString = map[PinMode]string{
	PinModeInput:     "input",
	PinModeOutput:    "output",
	PinModePullUp:    "pullup",
	PinModePullDown:  "pulldown",
	PinModeOpenDrain: "open_drain",
	PinModeInterrupt: "interrupt",
}

var StringToPinMode = map[string]PinMode{
	"input":      PinModeInput,
	"output":     PinModeOutput,
	"pullup":     PinModePullUp,
	"pulldown":   PinModePullDown,
	"open_drain": PinModeOpenDrain,
	"interrupt":  PinModeInterrupt,
}

func (m PinMode) Has(flags PinMode) bool {
	return m&flags == flags
}

func (m PinMode) String() string {
	names := make([]string, 0, len(PinModeToString))
	for flag, name := range PinModeToString {
		if m&flag != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func (m PinMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
