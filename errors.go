package testgate

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, file not found, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// GateFailureError represents failing suites or quality gates (exit code 1)
type GateFailureError struct {
	Message string
}

func (e *GateFailureError) Error() string {
	return fmt.Sprintf("gate failure: %s", e.Message)
}

// NewGateFailureError creates a new GateFailureError
func NewGateFailureError(message string) *GateFailureError {
	return &GateFailureError{Message: message}
}

// IsGateFailureError checks if the error is or wraps a GateFailureError
func IsGateFailureError(err error) bool {
	var gateErr *GateFailureError
	return err != nil && errors.As(err, &gateErr)
}
