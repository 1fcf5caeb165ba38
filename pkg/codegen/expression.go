package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Raw is emitted verbatim.
type Raw string

// HexUint8 renders as 0x38.
type HexUint8 uint8

// Literal renders a Go value as a C++ expression.
func Literal(v interface{}) string {
	switch t := v.(type) {
	case Raw:
		return string(t)
	case *Variable:
		return t.ID
	case HexUint8:
		return fmt.Sprintf("0x%02X", uint8(t))
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 32)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s + "f"
	case time.Duration:
		return strconv.FormatInt(t.Milliseconds(), 10)
	default:
		panic(fmt.Sprintf("codegen: unsupported literal %T", v))
	}
}

func joinArgs(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, Literal(a))
	}
	return strings.Join(parts, ", ")
}

func joinStrings(parts []string) string {
	return strings.Join(parts, ", ")
}

func upper(s string) string {
	return strings.ToUpper(s)
}
