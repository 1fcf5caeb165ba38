// Package codegen records the statements of a generated firmware program and
// renders them as the body of its C++ setup().
package codegen

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
)

var _ runtime.Registrar = (*Program)(nil)

const DefaultBusID = "i2c_bus"

type bus struct {
	variable  *Variable
	addresses map[uint8]string
}

// Program is the generation environment shared by every record of one
// manifest. It owns global uniqueness of IDs and of bus addresses.
type Program struct {
	statements []string
	includes   sets.String
	ids        sets.String
	buses      map[string]*bus
	busOrder   []string
}

func NewProgram() *Program {
	return &Program{
		includes: sets.NewString(`"esphome.h"`),
		ids:      sets.NewString(),
		buses:    make(map[string]*bus),
	}
}

// Variable is a declared object of the generated program.
type Variable struct {
	ID      string
	Type    string
	program *Program
}

func (v *Variable) GetID() string {
	return v.ID
}

// Call emits id->method(args...).
func (v *Variable) Call(method string, args ...interface{}) {
	v.program.add(fmt.Sprintf("%s->%s(%s);", v.ID, method, joinArgs(args)))
}

func (p *Program) Include(header string) {
	p.includes.Insert(header)
}

func (p *Program) add(stmt string) {
	p.statements = append(p.statements, stmt)
}

// Declare emits `auto *id = new typ(args...);`.
func (p *Program) Declare(id, typ string, args ...interface{}) (*Variable, error) {
	if p.ids.Has(id) {
		return nil, errors.Wrapf(constant.ErrDuplicateID, "%q", id)
	}
	p.ids.Insert(id)
	p.add(fmt.Sprintf("auto *%s = new %s(%s);", id, typ, joinArgs(args)))
	return &Variable{ID: id, Type: typ, program: p}, nil
}

func (p *Program) Has(id string) bool {
	return p.ids.Has(id)
}

// Component is a declared object that can be scheduled and put on a bus.
type Component struct {
	*Variable
}

var (
	_ runtime.PollingComponent = (*Component)(nil)
	_ runtime.BusDevice        = (*Component)(nil)
)

func (p *Program) NewComponent(id, typ string) (*Component, error) {
	v, err := p.Declare(id, typ)
	if err != nil {
		return nil, err
	}
	return &Component{Variable: v}, nil
}

func (c *Component) SetUpdateInterval(interval time.Duration) error {
	c.Call("set_update_interval", interval)
	return nil
}

func (c *Component) SetBus(busID string) error {
	b, ok := c.program.buses[busID]
	if !ok {
		return errors.Wrapf(constant.ErrUnknownBus, "%q", busID)
	}
	c.Call("set_i2c_bus", b.variable)
	return nil
}

func (c *Component) SetBusAddress(address uint8) error {
	c.Call("set_i2c_address", HexUint8(address))
	return nil
}

// DeclareI2CBus declares a bus component. The first declared bus is the
// default bus.
func (p *Program) DeclareI2CBus(id string, sda, scl int, frequency uint) error {
	if _, ok := p.buses[id]; ok {
		return errors.Wrapf(constant.ErrDuplicateID, "bus %q", id)
	}
	c, err := p.NewComponent(id, "i2c::ArduinoI2CBus")
	if err != nil {
		return err
	}
	p.Include(`"esphome/components/i2c/i2c.h"`)
	c.Call("set_sda_pin", sda)
	c.Call("set_scl_pin", scl)
	c.Call("set_frequency", uint32(frequency))
	p.add(fmt.Sprintf("App.register_component(%s);", id))
	p.buses[id] = &bus{variable: c.Variable, addresses: map[uint8]string{}}
	p.busOrder = append(p.busOrder, id)
	klog.V(4).InfoS("Declared i2c bus", "bus", id, "sda", sda, "scl", scl)
	return nil
}

func (p *Program) DefaultBus() (string, bool) {
	if len(p.busOrder) == 0 {
		return "", false
	}
	return p.busOrder[0], true
}

func (p *Program) own(c runtime.Component) (*Variable, error) {
	vc, ok := c.(interface{ variable() *Variable })
	if !ok {
		return nil, errors.Wrapf(constant.ErrForeignComponent, "%T", c)
	}
	v := vc.variable()
	if v.program != p {
		return nil, errors.Wrapf(constant.ErrForeignComponent, "%q", v.ID)
	}
	return v, nil
}

func (v *Variable) variable() *Variable {
	return v
}

func (p *Program) RegisterComponent(c runtime.PollingComponent, interval time.Duration) error {
	v, err := p.own(c)
	if err != nil {
		return err
	}
	if err = c.SetUpdateInterval(interval); err != nil {
		return err
	}
	p.add(fmt.Sprintf("App.register_component(%s);", v.ID))
	return nil
}

func (p *Program) RegisterBusDevice(d runtime.BusDevice, busID string, address uint8) error {
	v, err := p.own(d)
	if err != nil {
		return err
	}
	if busID == "" {
		id, ok := p.DefaultBus()
		if !ok {
			return errors.Wrap(constant.ErrUnknownBus, "no bus declared")
		}
		busID = id
	}
	b, ok := p.buses[busID]
	if !ok {
		return errors.Wrapf(constant.ErrUnknownBus, "%q", busID)
	}
	if owner, taken := b.addresses[address]; taken {
		return errors.Wrapf(constant.ErrAddressInUse, "0x%02X on %s is used by %s", address, busID, owner)
	}
	if err = d.SetBus(busID); err != nil {
		return err
	}
	if err = d.SetBusAddress(address); err != nil {
		return err
	}
	b.addresses[address] = v.ID
	return nil
}

// Render writes the program as a C++ translation unit.
func (p *Program) Render(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("// Auto generated code by meterbind. Do not edit.\n")
	for _, inc := range p.includes.List() {
		sb.WriteString("#include " + inc + "\n")
	}
	sb.WriteString("\nusing namespace esphome;\n\nvoid setup() {\n")
	for _, stmt := range p.statements {
		sb.WriteString("  " + stmt + "\n")
	}
	sb.WriteString("  App.setup();\n}\n\nvoid loop() {\n  App.loop();\n}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// Statements returns a copy of the recorded statements.
func (p *Program) Statements() []string {
	return append([]string(nil), p.statements...)
}
