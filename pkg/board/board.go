// Package board describes which GPIO pins a target board exposes and what
// each pin can electrically do.
package board

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"meterbind/pkg/runtime/constant"
)

const DefaultBoard = "esp32"

type Pin struct {
	Number       int
	Capabilities constant.PinMode
	// Reserved pins exist but are wired to flash or boot straps.
	Reserved bool
}

type Board struct {
	Name string
	// PinClass declares a GPIO pin object in generated code.
	PinClass string
	Pins     map[int]Pin
	// DefaultSDA and DefaultSCL are used when a manifest declares no bus.
	DefaultSDA int
	DefaultSCL int
}

const (
	gpio      = constant.PinModeInput | constant.PinModeOutput | constant.PinModePullUp | constant.PinModePullDown | constant.PinModeOpenDrain | constant.PinModeInterrupt
	inputOnly = constant.PinModeInput | constant.PinModeInterrupt
)

var boards = map[string]*Board{
	"esp32":   esp32(),
	"esp8266": esp8266(),
}

func Lookup(name string) (*Board, bool) {
	b, ok := boards[name]
	return b, ok
}

func Names() []string {
	names := make([]string, 0, len(boards))
	for name := range boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParsePinNumber accepts "25", "GPIO25" and "gpio25".
func ParsePinNumber(s string) (int, error) {
	raw := strings.TrimSpace(s)
	if len(raw) > 4 && strings.EqualFold(raw[:4], "GPIO") {
		raw = raw[4:]
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a pin number", s)
	}
	return n, nil
}

// Pin resolves a pin number, failing when the board has no such pin or the
// pin is reserved.
func (b *Board) Pin(number int) (Pin, error) {
	p, ok := b.Pins[number]
	if !ok {
		return Pin{}, fmt.Errorf("%s has no GPIO%d", b.Name, number)
	}
	if p.Reserved {
		return Pin{}, fmt.Errorf("GPIO%d is reserved on %s", number, b.Name)
	}
	return p, nil
}

func esp32() *Board {
	b := &Board{Name: "esp32", PinClass: "esp32::ESP32InternalGPIOPin", Pins: map[int]Pin{}, DefaultSDA: 21, DefaultSCL: 22}
	for n := 0; n <= 39; n++ {
		switch {
		case n == 20 || n == 24 || (n >= 28 && n <= 31):
			continue
		case n >= 6 && n <= 11:
			b.Pins[n] = Pin{Number: n, Capabilities: gpio, Reserved: true}
		case n >= 34:
			b.Pins[n] = Pin{Number: n, Capabilities: inputOnly}
		default:
			b.Pins[n] = Pin{Number: n, Capabilities: gpio}
		}
	}
	return b
}

func esp8266() *Board {
	b := &Board{Name: "esp8266", PinClass: "esp8266::ESP8266GPIOPin", Pins: map[int]Pin{}, DefaultSDA: 4, DefaultSCL: 5}
	for n := 0; n <= 16; n++ {
		switch {
		case n >= 6 && n <= 11:
			b.Pins[n] = Pin{Number: n, Capabilities: gpio, Reserved: true}
		case n == 16:
			// no interrupt, no pull-up
			b.Pins[n] = Pin{Number: n, Capabilities: constant.PinModeInput | constant.PinModeOutput | constant.PinModePullDown}
		default:
			b.Pins[n] = Pin{Number: n, Capabilities: gpio &^ constant.PinModePullDown}
		}
	}
	return b
}
