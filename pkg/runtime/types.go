package runtime

import (
	"meterbind/pkg/runtime/constant"
	"time"
)

// OutputChannelSpec is a fully resolved measurement endpoint: the fixed
// metadata of its channel plus the user's permitted overrides.
type OutputChannelSpec struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Unit              constant.Unit        `json:"unit"`
	AccuracyDecimals  int                  `json:"accuracyDecimals"`
	DeviceClass       constant.DeviceClass `json:"deviceClass"`
	StateClass        constant.StateClass  `json:"stateClass"`
	Icon              string               `json:"icon,omitempty"`
	ForceUpdate       bool                 `json:"forceUpdate,omitempty"`
	Internal          bool                 `json:"internal,omitempty"`
	DisabledByDefault bool                 `json:"disabledByDefault,omitempty"`
	EntityCategory    string               `json:"entityCategory,omitempty"`
	ExpireAfter       time.Duration        `json:"expireAfter,omitempty"` // 0 means never
	Filters           []FilterSpec         `json:"filters,omitempty"`
}

type FilterKind int8

const (
	FilterMultiply FilterKind = iota
	FilterOffset
	FilterDelta
	FilterThrottle
	FilterHeartbeat
	FilterSlidingWindowMovingAverage
)

var FilterKindToString = map[FilterKind]string{
	FilterMultiply:                   "multiply",
	FilterOffset:                     "offset",
	FilterDelta:                      "delta",
	FilterThrottle:                   "throttle",
	FilterHeartbeat:                  "heartbeat",
	FilterSlidingWindowMovingAverage: "sliding_window_moving_average",
}

func (fk FilterKind) String() string {
	return FilterKindToString[fk]
}

// FilterSpec is one validated publish filter. Only the fields relevant to
// Kind are set.
type FilterSpec struct {
	Kind        FilterKind    `json:"kind"`
	Value       float64       `json:"value,omitempty"`  // multiply, offset, delta
	Period      time.Duration `json:"period,omitempty"` // throttle, heartbeat
	WindowSize  int           `json:"windowSize,omitempty"`
	SendEvery   int           `json:"sendEvery,omitempty"`
	SendFirstAt int           `json:"sendFirstAt,omitempty"`
}

// Pin is a resolved board pin reference. Class is the pin type of the
// board's generated code.
type Pin struct {
	Number   int              `json:"number"`
	Mode     constant.PinMode `json:"mode"`
	Inverted bool             `json:"inverted,omitempty"`
	Class    string           `json:"class"`
}

type ObjectMeta struct {
	Name    string    `json:"name,omitempty"`
	ID      string    `json:"id"`
	Version string    `json:"eTag"`
	ModTime time.Time `json:"modTime"`
}

func (meta *ObjectMeta) GetName() string              { return meta.Name }
func (meta *ObjectMeta) SetName(name string)          { meta.Name = name }
func (meta *ObjectMeta) GetID() string                { return meta.ID }
func (meta *ObjectMeta) SetID(id string)              { meta.ID = id }
func (meta *ObjectMeta) GetVersion() string           { return meta.Version }
func (meta *ObjectMeta) SetVersion(version string)    { meta.Version = version }
func (meta *ObjectMeta) GetModTime() time.Time        { return meta.ModTime }
func (meta *ObjectMeta) SetModTime(modTime time.Time) { meta.ModTime = modTime }
