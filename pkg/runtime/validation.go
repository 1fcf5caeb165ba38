package runtime

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

const identifierFmt = "[A-Za-z_][A-Za-z0-9_]*"

var identifierRegexp = regexp.MustCompile("^" + identifierFmt + "$")

// Generated IDs become C++ variable names.
var reservedIdentifiers = sets.NewString(
	"App", "auto", "bool", "break", "case", "char", "class", "const", "continue",
	"default", "delete", "do", "double", "else", "enum", "false", "float", "for",
	"if", "int", "loop", "namespace", "new", "nullptr", "private", "protected",
	"public", "return", "setup", "static", "struct", "switch", "template", "this",
	"true", "using", "void", "while",
)

type ValidateNameFunc func(name string) error

func IsIdentifier(name string) error {
	if !identifierRegexp.MatchString(name) {
		return fmt.Errorf("must match the regex %s", identifierFmt)
	}
	if reservedIdentifiers.Has(name) {
		return fmt.Errorf("%q is a reserved word", name)
	}
	return nil
}

func ValidateIdentifier(name string, fldPath *field.Path) field.ErrorList {
	return ValidateName(name, IsIdentifier, fldPath)
}

func ValidateName(name string, nameFn ValidateNameFunc, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList
	if len(name) == 0 {
		allErrs = append(allErrs, field.Required(fldPath, ""))
	} else if err := nameFn(name); err != nil {
		allErrs = append(allErrs, field.Invalid(fldPath, name, err.Error()))
	}
	return allErrs
}

// ParseDuration accepts Go durations and the "min" unit, e.g. "60s", "1min",
// "1min30s", "500ms".
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(strings.ReplaceAll(strings.TrimSpace(s), "min", "m"))
}

func ValidatePositiveDuration(s string, fldPath *field.Path) (time.Duration, *field.Error) {
	d, err := ParseDuration(s)
	if err != nil {
		return 0, field.Invalid(fldPath, s, "must be a duration such as 60s or 1min")
	}
	if d <= 0 {
		return 0, field.Invalid(fldPath, s, "must be positive")
	}
	// generated code counts in milliseconds
	if d%time.Millisecond != 0 {
		return 0, field.Invalid(fldPath, s, "maximum precision is milliseconds")
	}
	return d, nil
}

// Cause is one reason a record was rejected.
type Cause struct {
	Reason  error
	Channel string
	Field   *field.Error
}

func (c *Cause) Error() string {
	return c.Field.Error()
}

func (c *Cause) Unwrap() []error {
	return []error{c.Reason, c.Field}
}

// ValidationError lists every problem found in one record, in declaration
// order.
type ValidationError struct {
	DeviceType string
	ID         string
	Causes     []*Cause
}

func (e *ValidationError) Add(reason error, channel string, errs ...*field.Error) {
	for _, fe := range errs {
		e.Causes = append(e.Causes, &Cause{Reason: reason, Channel: channel, Field: fe})
	}
}

// First returns the first cause, or nil when there is none.
func (e *ValidationError) First() *Cause {
	if e == nil || len(e.Causes) == 0 {
		return nil
	}
	return e.Causes[0]
}

func (e *ValidationError) FieldErrors() field.ErrorList {
	errs := make(field.ErrorList, 0, len(e.Causes))
	for _, c := range e.Causes {
		errs = append(errs, c.Field)
	}
	return errs
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("invalid %s %q: %s", e.DeviceType, e.ID, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, c := range e.Causes {
		errs = append(errs, c)
	}
	return errs
}

// ErrorOrNil keeps a nil *ValidationError from turning into a non-nil error.
func (e *ValidationError) ErrorOrNil() error {
	if e == nil || len(e.Causes) == 0 {
		return nil
	}
	return e
}
