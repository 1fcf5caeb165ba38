package v1

const DeviceTypeADE7880 = "ade7880"

// ADE7880 is one meter record as written by the user.
type ADE7880 struct {
	ID             string   `json:"id" mapstructure:"id"`
	IRQPin         *PinSpec `json:"irq_pin,omitempty" mapstructure:"irq_pin"`
	Address        *int     `json:"address,omitempty" mapstructure:"address"`
	UpdateInterval string   `json:"update_interval,omitempty" mapstructure:"update_interval"`
	I2CID          string   `json:"i2c_id,omitempty" mapstructure:"i2c_id"`

	VoltageA     *Sensor `json:"voltage_a,omitempty" mapstructure:"voltage_a"`
	VoltageB     *Sensor `json:"voltage_b,omitempty" mapstructure:"voltage_b"`
	VoltageC     *Sensor `json:"voltage_c,omitempty" mapstructure:"voltage_c"`
	CurrentA     *Sensor `json:"current_a,omitempty" mapstructure:"current_a"`
	CurrentB     *Sensor `json:"current_b,omitempty" mapstructure:"current_b"`
	CurrentC     *Sensor `json:"current_c,omitempty" mapstructure:"current_c"`
	ActivePowerA *Sensor `json:"active_power_a,omitempty" mapstructure:"active_power_a"`
	ActivePowerB *Sensor `json:"active_power_b,omitempty" mapstructure:"active_power_b"`
	ActivePowerC *Sensor `json:"active_power_c,omitempty" mapstructure:"active_power_c"`
}

func (a *ADE7880) GetDeviceType() string {
	return DeviceTypeADE7880
}

func (a *ADE7880) GetID() string {
	return a.ID
}

// Sensor is the optional sub-record of one measurement channel. Unit, device
// class and state class are fixed per channel and may only repeat the fixed
// value.
type Sensor struct {
	ID                string    `json:"id,omitempty" mapstructure:"id"`
	Name              string    `json:"name,omitempty" mapstructure:"name"`
	AccuracyDecimals  *int      `json:"accuracy_decimals,omitempty" mapstructure:"accuracy_decimals"`
	UnitOfMeasurement string    `json:"unit_of_measurement,omitempty" mapstructure:"unit_of_measurement"`
	DeviceClass       string    `json:"device_class,omitempty" mapstructure:"device_class"`
	StateClass        string    `json:"state_class,omitempty" mapstructure:"state_class"`
	Icon              string    `json:"icon,omitempty" mapstructure:"icon"`
	ForceUpdate       bool      `json:"force_update,omitempty" mapstructure:"force_update"`
	Internal          bool      `json:"internal,omitempty" mapstructure:"internal"`
	DisabledByDefault bool      `json:"disabled_by_default,omitempty" mapstructure:"disabled_by_default"`
	EntityCategory    string    `json:"entity_category,omitempty" mapstructure:"entity_category"`
	ExpireAfter       string    `json:"expire_after,omitempty" mapstructure:"expire_after"`
	Filters           []*Filter `json:"filters,omitempty" mapstructure:"filters"`
}

// Filter holds exactly one publish filter.
type Filter struct {
	Multiply                   *float64       `json:"multiply,omitempty" mapstructure:"multiply"`
	Offset                     *float64       `json:"offset,omitempty" mapstructure:"offset"`
	Delta                      *float64       `json:"delta,omitempty" mapstructure:"delta"`
	Throttle                   string         `json:"throttle,omitempty" mapstructure:"throttle"`
	Heartbeat                  string         `json:"heartbeat,omitempty" mapstructure:"heartbeat"`
	SlidingWindowMovingAverage *SlidingWindow `json:"sliding_window_moving_average,omitempty" mapstructure:"sliding_window_moving_average"`
}

type SlidingWindow struct {
	WindowSize  *int `json:"window_size,omitempty" mapstructure:"window_size"`
	SendEvery   *int `json:"send_every,omitempty" mapstructure:"send_every"`
	SendFirstAt *int `json:"send_first_at,omitempty" mapstructure:"send_first_at"`
}
