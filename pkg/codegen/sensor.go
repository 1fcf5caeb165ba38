package codegen

import (
	"fmt"

	"meterbind/pkg/runtime"
)

var _ runtime.Endpoint = (*Sensor)(nil)

// Sensor is a declared measurement endpoint.
type Sensor struct {
	*Variable
	spec *runtime.OutputChannelSpec
}

func (s *Sensor) GetSpec() *runtime.OutputChannelSpec {
	return s.spec
}

// NewEndpoint declares a sensor::Sensor configured from spec and registers it
// with the application.
func (p *Program) NewEndpoint(spec *runtime.OutputChannelSpec) (runtime.Endpoint, error) {
	v, err := p.Declare(spec.ID, "sensor::Sensor")
	if err != nil {
		return nil, err
	}
	p.Include(`"esphome/components/sensor/sensor.h"`)
	p.add(fmt.Sprintf("App.register_sensor(%s);", v.ID))
	v.Call("set_name", spec.Name)
	if spec.DisabledByDefault {
		v.Call("set_disabled_by_default", true)
	}
	if spec.Internal {
		v.Call("set_internal", true)
	}
	if spec.Icon != "" {
		v.Call("set_icon", spec.Icon)
	}
	if spec.EntityCategory != "" {
		v.Call("set_entity_category", Raw("ENTITY_CATEGORY_"+upper(spec.EntityCategory)))
	}
	v.Call("set_unit_of_measurement", spec.Unit.String())
	v.Call("set_accuracy_decimals", spec.AccuracyDecimals)
	v.Call("set_device_class", spec.DeviceClass.String())
	v.Call("set_state_class", Raw("sensor::STATE_CLASS_"+upper(spec.StateClass.String())))
	v.Call("set_force_update", spec.ForceUpdate)
	if spec.ExpireAfter > 0 {
		v.Call("set_expire_after", spec.ExpireAfter)
	}
	if len(spec.Filters) > 0 {
		filters := make([]string, 0, len(spec.Filters))
		for _, f := range spec.Filters {
			filters = append(filters, filterExpression(f))
		}
		v.Call("set_filters", Raw(fmt.Sprintf("{%s}", joinStrings(filters))))
	}
	return &Sensor{Variable: v, spec: spec}, nil
}

func filterExpression(f runtime.FilterSpec) string {
	switch f.Kind {
	case runtime.FilterMultiply:
		return fmt.Sprintf("new sensor::MultiplyFilter(%s)", Literal(f.Value))
	case runtime.FilterOffset:
		return fmt.Sprintf("new sensor::OffsetFilter(%s)", Literal(f.Value))
	case runtime.FilterDelta:
		return fmt.Sprintf("new sensor::DeltaFilter(%s)", Literal(f.Value))
	case runtime.FilterThrottle:
		return fmt.Sprintf("new sensor::ThrottleFilter(%s)", Literal(f.Period))
	case runtime.FilterHeartbeat:
		return fmt.Sprintf("new sensor::HeartbeatFilter(%s)", Literal(f.Period))
	case runtime.FilterSlidingWindowMovingAverage:
		return fmt.Sprintf("new sensor::SlidingWindowMovingAverageFilter(%d, %d, %d)", f.WindowSize, f.SendEvery, f.SendFirstAt)
	}
	panic(fmt.Sprintf("codegen: unknown filter kind %d", f.Kind))
}
