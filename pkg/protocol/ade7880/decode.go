package ade7880

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ade7880 "meterbind/pkg/protocol/ade7880/runtime"
	"meterbind/pkg/runtime"
	"meterbind/pkg/runtime/constant"
	v1 "meterbind/pkg/v1"
)

var pinSpecType = reflect.TypeOf(v1.PinSpec{})

// topLevelReasons classifies decode failures by the key they occur under.
var topLevelReasons = map[string]error{
	"id":              constant.ErrInvalidID,
	"irq_pin":         constant.ErrInvalidPinSpec,
	"address":         constant.ErrInvalidBusAddress,
	"update_interval": constant.ErrInvalidUpdateInterval,
	"i2c_id":          constant.ErrInvalidBusID,
}

// pinShorthandHook turns 25 or "GPIO25" into {number: ...}.
func pinShorthandHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != pinSpecType && !(to.Kind() == reflect.Ptr && to.Elem() == pinSpecType) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return map[string]interface{}{"number": data}, nil
	}
	return data, nil
}

// integralHook rejects numbers with a fraction for integer fields. YAML and
// JSON numbers arrive as float64.
func integralHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", data)
	}
	return data, nil
}

// presentChannels gives channel keys without a value an empty sub-record, so
// a bare "voltage_a:" still declares the channel.
func presentChannels(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for key, value := range in {
		out[key] = value
	}
	for _, k := range ade7880.Channels() {
		if value, ok := out[k.String()]; ok && value == nil {
			out[k.String()] = map[string]interface{}{}
		}
	}
	return out
}

// Decode converts a generic record, as read from YAML or JSON, into a raw
// ADE7880 record. Unknown keys and values of the wrong type are rejected.
func Decode(in map[string]interface{}) (*v1.ADE7880, error) {
	out := &v1.ADE7880{}
	md := &mapstructure.Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(integralHook, pinShorthandHook),
		WeaklyTypedInput: true,
		Metadata:         md,
		Result:           out,
	})
	if err != nil {
		return nil, err
	}

	in = presentChannels(in)
	id, _ := in["id"].(string)
	verr := &runtime.ValidationError{DeviceType: ade7880.DeviceType, ID: id}
	if err := decoder.Decode(in); err != nil {
		var msgs []string
		if merr, ok := err.(*mapstructure.Error); ok {
			msgs = merr.Errors
		} else {
			msgs = []string{err.Error()}
		}
		sort.Strings(msgs)
		for _, msg := range msgs {
			key := decodeErrorKey(msg)
			reason, channel := classify(key)
			verr.Add(reason, channel, field.TypeInvalid(keyPath(key), in[key], msg))
		}
	}

	sort.Strings(md.Unused)
	for _, key := range md.Unused {
		reason, channel := classify(key)
		verr.Add(reason, channel, field.Forbidden(keyPath(key), "extra keys not allowed"))
	}

	if err := verr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func classify(key string) (error, string) {
	top := key
	if i := strings.IndexAny(top, ".["); i >= 0 {
		top = top[:i]
	}
	if reason, ok := topLevelReasons[top]; ok {
		return reason, ""
	}
	for _, k := range ade7880.Channels() {
		if k.String() == top {
			return constant.ErrInvalidChannelSpec, top
		}
	}
	return constant.ErrMalformedRecord, ""
}

// decodeErrorKey extracts the first quoted key of a mapstructure message.
func decodeErrorKey(msg string) string {
	start := strings.Index(msg, "'")
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], "'")
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

func keyPath(key string) *field.Path {
	if key == "" {
		return field.NewPath(ade7880.DeviceType)
	}
	return field.NewPath(key)
}

// DecodeAndValidate is Decode followed by Validate.
func (v *Validator) DecodeAndValidate(in map[string]interface{}) (*ade7880.Config, error) {
	raw, err := Decode(in)
	if err != nil {
		return nil, err
	}
	cfg, err := v.Validate(raw)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
