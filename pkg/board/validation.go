package board

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
)

// Usage describes what a configured pin is used for.
type Usage struct {
	Name string
	// Required capabilities the board pin must offer.
	Required constant.PinMode
	// Forbidden modes the configuration may not request.
	Forbidden constant.PinMode
	// Default mode when the configuration requests none.
	Default constant.PinMode
}

var (
	InterruptInput = Usage{
		Name:      "interrupt input",
		Required:  constant.PinModeInput | constant.PinModeInterrupt,
		Forbidden: constant.PinModeOutput | constant.PinModeOpenDrain,
		Default:   constant.PinModeInput,
	}
	BusLine = Usage{
		Name:     "bus line",
		Required: constant.PinModeInput | constant.PinModeOutput,
		Default:  constant.PinModeInput | constant.PinModeOutput | constant.PinModeOpenDrain,
	}
)

func requestedMode(spec *v1.PinModeSpec) constant.PinMode {
	var m constant.PinMode
	if spec.Input {
		m |= constant.PinModeInput
	}
	if spec.Output {
		m |= constant.PinModeOutput
	}
	if spec.PullUp {
		m |= constant.PinModePullUp
	}
	if spec.PullDown {
		m |= constant.PinModePullDown
	}
	if spec.OpenDrain {
		m |= constant.PinModeOpenDrain
	}
	return m
}

// ValidatePin resolves spec on the board for the given usage. Only the first
// problem is reported.
func (b *Board) ValidatePin(spec *v1.PinSpec, usage Usage, fldPath *field.Path) (*runtime.Pin, *field.Error) {
	if spec == nil {
		return nil, field.Required(fldPath, "")
	}
	numberPath := fldPath
	if spec.Mode != nil || spec.Inverted {
		numberPath = fldPath.Child("number")
	}
	if spec.Number == "" {
		return nil, field.Required(numberPath, "")
	}
	number, err := ParsePinNumber(spec.Number)
	if err != nil {
		return nil, field.Invalid(numberPath, spec.Number, err.Error())
	}
	pin, err := b.Pin(number)
	if err != nil {
		return nil, field.Invalid(numberPath, spec.Number, err.Error())
	}
	if !pin.Capabilities.Has(usage.Required) {
		return nil, field.Invalid(numberPath, spec.Number, fmt.Sprintf("GPIO%d cannot be used as %s on %s", number, usage.Name, b.Name))
	}

	mode := usage.Default
	if spec.Mode != nil {
		requested := requestedMode(spec.Mode)
		if requested&usage.Forbidden != 0 {
			return nil, field.Invalid(fldPath.Child("mode"), requested.String(), fmt.Sprintf("%s pins cannot be %s", usage.Name, (requested & usage.Forbidden).String()))
		}
		mode |= requested
	}
	pulls := mode & (constant.PinModePullUp | constant.PinModePullDown)
	if pulls == constant.PinModePullUp|constant.PinModePullDown {
		return nil, field.Invalid(fldPath.Child("mode"), mode.String(), "pullup and pulldown are mutually exclusive")
	}
	if !pin.Capabilities.Has(pulls) {
		return nil, field.Invalid(fldPath.Child("mode"), mode.String(), fmt.Sprintf("GPIO%d has no internal %s", number, pulls.String()))
	}
	return &runtime.Pin{Number: number, Mode: mode, Inverted: spec.Inverted, Class: b.PinClass}, nil
}
