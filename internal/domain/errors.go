package domain

import (
	"errors"
	"fmt"
)

// ErrZeroBase marks a percentage computed against a zero base value
var ErrZeroBase = errors.New("division by zero base value")

// DataError reports missing or malformed input rows, a missing exact-date
// match, or a schema mismatch at the data-access boundary.
type DataError struct {
	Op  string // operation that detected the problem
	Msg string
	Err error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// ConfigError reports duplicate or contradictory reference data
type ConfigError struct {
	Op  string
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewDataError builds a DataError with a formatted message
func NewDataError(op, format string, args ...interface{}) *DataError {
	return &DataError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NewConfigError builds a ConfigError with a formatted message
func NewConfigError(op, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsDataError reports whether err is or wraps a DataError
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// IsConfigError reports whether err is or wraps a ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
