package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrSettingNotFound indicates the setting path doesn't exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates the value is out of range or not allowed.
	ErrValidationFailed = errors.New("validation failed")
)

// SettingError describes a failure to apply one setting.
type SettingError struct {
	// Path is the setting path.
	Path string
	// Source names the layer the value came from.
	Source string
	// Value is the rejected value.
	Value any
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SettingError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: setting %s = %v: %v", e.Source, e.Path, e.Value, e.Err)
	}
	return fmt.Sprintf("setting %s = %v: %v", e.Path, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *SettingError) Unwrap() error {
	return e.Err
}
