package ade7880

import (
	"fmt"

	"k8s.io/klog/v2"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
)

// Step is one stage of emitting a binding.
type Step int

const (
	StepConstruct Step = iota + 1
	StepRegisterComponent
	StepRegisterBusDevice
	StepAttachIRQPin
	StepAttachChannel
)

var StepToString = map[Step]string{
	StepConstruct:         "construct",
	StepRegisterComponent: "register component",
	StepRegisterBusDevice: "register bus device",
	StepAttachIRQPin:      "attach irq pin",
	StepAttachChannel:     "attach",
}

func (s Step) String() string {
	return StepToString[s]
}

// GenerationError reports the step that failed. Steps that already ran are
// not undone.
type GenerationError struct {
	ID      string
	Step    Step
	Channel string
	Err     error
}

func (e *GenerationError) Error() string {
	step := fmt.Sprintf("step %d (%s", e.Step, e.Step)
	if e.Channel != "" {
		step += " " + e.Channel
	}
	return fmt.Sprintf("generate %s %q: %s): %v", ade7880.DeviceType, e.ID, step, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Generator emits the construction, registration and attachment calls of a
// validated record.
type Generator struct {
	registrar runtime.Registrar
	factory   DriverFactory
}

func NewGenerator(registrar runtime.Registrar, factory DriverFactory) *Generator {
	return &Generator{registrar: registrar, factory: factory}
}

// Generate runs the steps in order and stops at the first failure:
// construct the driver, register it for polling, register it on its bus,
// set the IRQ pin, then create and attach one endpoint per declared channel.
func (g *Generator) Generate(cfg *ade7880.Config) error {
	fail := func(step Step, channel string, err error) error {
		klog.V(2).InfoS("Failed to generate device", "deviceType", ade7880.DeviceType, "id", cfg.ID, "step", step.String(), "channel", channel, "err", err)
		return &GenerationError{ID: cfg.ID, Step: step, Channel: channel, Err: err}
	}

	driver, err := g.factory(cfg.ID)
	if err != nil {
		return fail(StepConstruct, "", err)
	}
	klog.V(4).InfoS("Constructed driver", "id", cfg.ID)

	if err := g.registrar.RegisterComponent(driver, cfg.UpdateInterval); err != nil {
		return fail(StepRegisterComponent, "", err)
	}

	if err := g.registrar.RegisterBusDevice(driver, cfg.BusID, cfg.Address); err != nil {
		return fail(StepRegisterBusDevice, "", err)
	}

	if cfg.IRQPin != nil {
		if err := driver.SetIRQPin(cfg.IRQPin); err != nil {
			return fail(StepAttachIRQPin, "", err)
		}
	}

	for _, k := range cfg.PresentChannels() {
		endpoint, err := g.registrar.NewEndpoint(cfg.Channels[k])
		if err != nil {
			return fail(StepAttachChannel, k.String(), err)
		}
		if err := Attach(driver, k, endpoint); err != nil {
			return fail(StepAttachChannel, k.String(), err)
		}
		klog.V(4).InfoS("Attached channel", "id", cfg.ID, "channel", k.String(), "sensor", endpoint.GetID())
	}
	return nil
}
