package response

import (
	"errors"
	"fmt"
	"strings"
)

// responseError is one entry of an error response body. Err keeps the cause
// for errors.Is and is never serialized.
type responseError struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
	Err     error   `json:"-"`
}

func (re *responseError) Error() string {
	return fmt.Sprintf("%d: %s", re.Code, re.Message)
}

func (re *responseError) Unwrap() error {
	return re.Err
}

// MultiError is the body of every failed request.
type MultiError struct {
	Errors []*responseError `json:"errors"`
}

// NewMultiError collects errs into one body. Errors that carry no code are
// reported as invalid configuration.
func NewMultiError(errs ...error) *MultiError {
	me := &MultiError{Errors: make([]*responseError, 0, len(errs))}
	for _, err := range errs {
		var re *responseError
		if !errors.As(err, &re) {
			re = newError(ErrCodeInvalidConfiguration, err, err.Error())
		}
		me.Errors = append(me.Errors, re)
	}
	return me
}

// Codes lists the code of every entry in order.
func (e *MultiError) Codes() []ErrCode {
	codes := make([]ErrCode, 0, len(e.Errors))
	for _, re := range e.Errors {
		codes = append(codes, re.Code)
	}
	return codes
}

func newError(code ErrCode, err error, args ...interface{}) *responseError {
	return &responseError{
		Code:    code,
		Message: fmt.Sprintf(messages[code], args...),
		Err:     err,
	}
}

func ErrResourceExists(resource string) *responseError {
	return newError(ErrCodeResourceExists, nil, resource)
}

func ErrResourceNotFound(resource string) *responseError {
	return newError(ErrCodeResourceNotFound, nil, resource)
}

// ErrInvalidConfiguration reports one rejected field of a manifest. detail is
// shown to the user, err is kept for errors.Is.
func ErrInvalidConfiguration(detail string, err error) *responseError {
	return newError(ErrCodeInvalidConfiguration, err, detail)
}

func ErrGenerationFailed(err error) *responseError {
	return newError(ErrCodeGenerationFailed, err, err.Error())
}

func ErrUnsupportedBoard(board string, supported []string) *responseError {
	return newError(ErrCodeUnsupportedBoard, nil, board, strings.Join(supported, ", "))
}
