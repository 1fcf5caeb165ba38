package codegen

import (
	"strings"

	"github.com/pkg/errors"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
)

// gpioFlags in the order they are emitted.
var gpioFlags = []struct {
	mode constant.PinMode
	flag string
}{
	{constant.PinModeInput, "gpio::Flags::FLAG_INPUT"},
	{constant.PinModeOutput, "gpio::Flags::FLAG_OUTPUT"},
	{constant.PinModeOpenDrain, "gpio::Flags::FLAG_OPEN_DRAIN"},
	{constant.PinModePullUp, "gpio::Flags::FLAG_PULLUP"},
	{constant.PinModePullDown, "gpio::Flags::FLAG_PULLDOWN"},
}

func pinFlags(mode constant.PinMode) Raw {
	var flags []string
	for _, f := range gpioFlags {
		if mode.Has(f.mode) {
			flags = append(flags, f.flag)
		}
	}
	if len(flags) == 0 {
		return "gpio::Flags::FLAG_NONE"
	}
	return Raw(strings.Join(flags, " | "))
}

// DeclarePin declares a GPIO pin object carrying the pin's number, inversion
// and mode flags.
func (p *Program) DeclarePin(id string, pin *runtime.Pin) (*Variable, error) {
	if pin.Class == "" {
		return nil, errors.Wrapf(constant.ErrInvalidPinSpec, "GPIO%d has no pin class", pin.Number)
	}
	v, err := p.Declare(id, pin.Class)
	if err != nil {
		return nil, err
	}
	v.Call("set_pin", pin.Number)
	v.Call("set_inverted", pin.Inverted)
	v.Call("set_flags", pinFlags(pin.Mode))
	return v, nil
}
