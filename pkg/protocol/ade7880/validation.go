package ade7880

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"meterbind/pkg/board"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
)

const (
	DefaultAddress        uint8 = 0x38
	MaxAddress                  = 0x77
	DefaultUpdateInterval       = 60 * time.Second
	MaxAccuracyDecimals         = 6
	MaxNameLength               = 120

	defaultWindowSize  = 15
	defaultSendEvery   = 15
	defaultSendFirstAt = 1

	entityCategoryDiagnostic = "diagnostic"
	expireNever              = "never"
)

var iconRegexp = regexp.MustCompile(`^[a-z0-9_-]+:[a-z0-9_-]+$`)

var filterKeys = []string{"multiply", "offset", "delta", "throttle", "heartbeat", "sliding_window_moving_average"}

// Validator checks raw ADE7880 records against the pins of one board.
type Validator struct {
	board *board.Board
}

func NewValidator(b *board.Board) *Validator {
	if b == nil {
		b, _ = board.Lookup(board.DefaultBoard)
	}
	return &Validator{board: b}
}

// Validate checks every field of raw and returns the record with all defaults
// applied. All problems are reported together in a *runtime.ValidationError;
// top-level fields come first, then channels in declaration order.
func (v *Validator) Validate(raw *v1.ADE7880) (*ade7880.Config, error) {
	if raw == nil {
		verr := &runtime.ValidationError{DeviceType: ade7880.DeviceType}
		verr.Add(constant.ErrMalformedRecord, "", field.Required(field.NewPath(ade7880.DeviceType), "record is empty"))
		return nil, verr
	}

	verr := &runtime.ValidationError{DeviceType: ade7880.DeviceType, ID: raw.ID}
	cfg := &ade7880.Config{
		ID:             raw.ID,
		Address:        DefaultAddress,
		UpdateInterval: DefaultUpdateInterval,
	}

	verr.Add(constant.ErrInvalidID, "", runtime.ValidateIdentifier(raw.ID, field.NewPath("id"))...)

	if raw.IRQPin != nil {
		pin, fe := v.board.ValidatePin(raw.IRQPin, board.InterruptInput, field.NewPath("irq_pin"))
		if fe != nil {
			verr.Add(constant.ErrInvalidPinSpec, "", fe)
		}
		cfg.IRQPin = pin
	}

	if raw.Address != nil {
		if *raw.Address < 0 || *raw.Address > MaxAddress {
			verr.Add(constant.ErrInvalidBusAddress, "", field.Invalid(field.NewPath("address"), *raw.Address,
				fmt.Sprintf("must be between 0x00 and 0x%02X", MaxAddress)))
		} else {
			cfg.Address = uint8(*raw.Address)
		}
	}

	if raw.UpdateInterval != "" {
		interval, fe := runtime.ValidatePositiveDuration(raw.UpdateInterval, field.NewPath("update_interval"))
		if fe != nil {
			verr.Add(constant.ErrInvalidUpdateInterval, "", fe)
		} else {
			cfg.UpdateInterval = interval
		}
	}

	if raw.I2CID != "" {
		if errs := runtime.ValidateIdentifier(raw.I2CID, field.NewPath("i2c_id")); len(errs) > 0 {
			verr.Add(constant.ErrInvalidBusID, "", errs...)
		} else {
			cfg.BusID = raw.I2CID
		}
	}

	ids := sets.NewString(raw.ID)
	for _, k := range ade7880.Channels() {
		s := sensorOf(raw, k)
		if s == nil {
			continue
		}
		fldPath := field.NewPath(k.String())
		spec, errs := validateSensor(raw.ID, k, s, fldPath)
		if len(errs) == 0 && ids.Has(spec.ID) {
			errs = append(errs, field.Duplicate(fldPath.Child("id"), spec.ID))
		}
		if len(errs) > 0 {
			verr.Add(constant.ErrInvalidChannelSpec, k.String(), errs...)
			continue
		}
		ids.Insert(spec.ID)
		cfg.Channels[k] = spec
	}

	if err := verr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SensorID is the endpoint ID used when a channel sub-record sets none.
func SensorID(recordID string, k ade7880.ChannelKind) string {
	return recordID + "_" + k.String()
}

func validateSensor(recordID string, k ade7880.ChannelKind, s *v1.Sensor, fldPath *field.Path) (*runtime.OutputChannelSpec, field.ErrorList) {
	var allErrs field.ErrorList
	profile := k.Profile()
	spec := &runtime.OutputChannelSpec{
		ID:                SensorID(recordID, k),
		Name:              profile.Name,
		Unit:              profile.Unit,
		AccuracyDecimals:  profile.AccuracyDecimals,
		DeviceClass:       profile.DeviceClass,
		StateClass:        profile.StateClass,
		ForceUpdate:       s.ForceUpdate,
		Internal:          s.Internal,
		DisabledByDefault: s.DisabledByDefault,
	}

	if s.ID != "" {
		if errs := runtime.ValidateIdentifier(s.ID, fldPath.Child("id")); len(errs) > 0 {
			allErrs = append(allErrs, errs...)
		} else {
			spec.ID = s.ID
		}
	}
	if s.Name != "" {
		if len(s.Name) > MaxNameLength {
			allErrs = append(allErrs, field.TooLong(fldPath.Child("name"), s.Name, MaxNameLength))
		} else {
			spec.Name = s.Name
		}
	}
	if s.AccuracyDecimals != nil {
		if *s.AccuracyDecimals < 0 || *s.AccuracyDecimals > MaxAccuracyDecimals {
			allErrs = append(allErrs, field.Invalid(fldPath.Child("accuracy_decimals"), *s.AccuracyDecimals,
				fmt.Sprintf("must be between 0 and %d", MaxAccuracyDecimals)))
		} else {
			spec.AccuracyDecimals = *s.AccuracyDecimals
		}
	}
	if s.UnitOfMeasurement != "" && s.UnitOfMeasurement != profile.Unit.String() {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("unit_of_measurement"), s.UnitOfMeasurement, []string{profile.Unit.String()}))
	}
	if s.DeviceClass != "" && s.DeviceClass != profile.DeviceClass.String() {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("device_class"), s.DeviceClass, []string{profile.DeviceClass.String()}))
	}
	if s.StateClass != "" && s.StateClass != profile.StateClass.String() {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("state_class"), s.StateClass, []string{profile.StateClass.String()}))
	}
	if s.Icon != "" {
		if !iconRegexp.MatchString(s.Icon) {
			allErrs = append(allErrs, field.Invalid(fldPath.Child("icon"), s.Icon, "must be in the form prefix:name, e.g. mdi:flash"))
		} else {
			spec.Icon = s.Icon
		}
	}
	if s.EntityCategory != "" {
		if s.EntityCategory != entityCategoryDiagnostic {
			allErrs = append(allErrs, field.NotSupported(fldPath.Child("entity_category"), s.EntityCategory, []string{entityCategoryDiagnostic}))
		} else {
			spec.EntityCategory = s.EntityCategory
		}
	}
	if s.ExpireAfter != "" && !strings.EqualFold(s.ExpireAfter, expireNever) {
		d, fe := runtime.ValidatePositiveDuration(s.ExpireAfter, fldPath.Child("expire_after"))
		if fe != nil {
			allErrs = append(allErrs, fe)
		} else {
			spec.ExpireAfter = d
		}
	}
	for i, f := range s.Filters {
		fs, fe := validateFilter(f, fldPath.Child("filters").Index(i))
		if fe != nil {
			allErrs = append(allErrs, fe)
			continue
		}
		spec.Filters = append(spec.Filters, fs)
	}

	return spec, allErrs
}

func validateFilter(f *v1.Filter, fldPath *field.Path) (runtime.FilterSpec, *field.Error) {
	if f == nil {
		return runtime.FilterSpec{}, field.Required(fldPath, "must set one of "+strings.Join(filterKeys, ", "))
	}
	var set []string
	if f.Multiply != nil {
		set = append(set, "multiply")
	}
	if f.Offset != nil {
		set = append(set, "offset")
	}
	if f.Delta != nil {
		set = append(set, "delta")
	}
	if f.Throttle != "" {
		set = append(set, "throttle")
	}
	if f.Heartbeat != "" {
		set = append(set, "heartbeat")
	}
	if f.SlidingWindowMovingAverage != nil {
		set = append(set, "sliding_window_moving_average")
	}
	switch len(set) {
	case 0:
		return runtime.FilterSpec{}, field.Required(fldPath, "must set one of "+strings.Join(filterKeys, ", "))
	case 1:
	default:
		return runtime.FilterSpec{}, field.Invalid(fldPath, strings.Join(set, ", "), "must set exactly one filter per entry")
	}

	switch {
	case f.Multiply != nil:
		return runtime.FilterSpec{Kind: runtime.FilterMultiply, Value: *f.Multiply}, nil
	case f.Offset != nil:
		return runtime.FilterSpec{Kind: runtime.FilterOffset, Value: *f.Offset}, nil
	case f.Delta != nil:
		if *f.Delta < 0 {
			return runtime.FilterSpec{}, field.Invalid(fldPath.Child("delta"), *f.Delta, "must be greater than or equal to 0")
		}
		return runtime.FilterSpec{Kind: runtime.FilterDelta, Value: *f.Delta}, nil
	case f.Throttle != "":
		d, fe := runtime.ValidatePositiveDuration(f.Throttle, fldPath.Child("throttle"))
		if fe != nil {
			return runtime.FilterSpec{}, fe
		}
		return runtime.FilterSpec{Kind: runtime.FilterThrottle, Period: d}, nil
	case f.Heartbeat != "":
		d, fe := runtime.ValidatePositiveDuration(f.Heartbeat, fldPath.Child("heartbeat"))
		if fe != nil {
			return runtime.FilterSpec{}, fe
		}
		return runtime.FilterSpec{Kind: runtime.FilterHeartbeat, Period: d}, nil
	}
	return validateSlidingWindow(f.SlidingWindowMovingAverage, fldPath.Child("sliding_window_moving_average"))
}

func validateSlidingWindow(sw *v1.SlidingWindow, fldPath *field.Path) (runtime.FilterSpec, *field.Error) {
	fs := runtime.FilterSpec{
		Kind:        runtime.FilterSlidingWindowMovingAverage,
		WindowSize:  defaultWindowSize,
		SendEvery:   defaultSendEvery,
		SendFirstAt: defaultSendFirstAt,
	}
	if sw.WindowSize != nil {
		if *sw.WindowSize < 1 {
			return runtime.FilterSpec{}, field.Invalid(fldPath.Child("window_size"), *sw.WindowSize, "must be at least 1")
		}
		fs.WindowSize = *sw.WindowSize
	}
	if sw.SendEvery != nil {
		if *sw.SendEvery < 1 {
			return runtime.FilterSpec{}, field.Invalid(fldPath.Child("send_every"), *sw.SendEvery, "must be at least 1")
		}
		fs.SendEvery = *sw.SendEvery
	}
	if sw.SendFirstAt != nil {
		if *sw.SendFirstAt < 1 || *sw.SendFirstAt > fs.SendEvery {
			return runtime.FilterSpec{}, field.Invalid(fldPath.Child("send_first_at"), *sw.SendFirstAt,
				fmt.Sprintf("must be between 1 and send_every (%d)", fs.SendEvery))
		}
		fs.SendFirstAt = *sw.SendFirstAt
	}
	return fs, nil
}
