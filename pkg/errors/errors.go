// Package errors defines the gateway's typed errors.
//
// Every typed error matches one sentinel through errors.Is, so callers at the
// transport boundary can classify a failure without knowing its concrete
// type: a ValidationError goes back to the issuer only, upstream failures
// become error events, and a TransportWriteError removes a listener.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need a single import.
var New = errors.New

// Sentinels matched by the typed errors below.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrTimeout             = errors.New("operation timed out")
	ErrTransportClosed     = errors.New("transport closed")
	ErrMalformedResult     = errors.New("malformed upstream result")
	ErrHubClosed           = errors.New("hub closed")
)

// ValidationError rejects a submission before it reaches the upstream.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError is fatal at startup: bad flags, environment or catalog.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error        { return e.Err }
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// UpstreamError is a reply from the upstream carrying a failure status, or
// a 2xx reply whose body could not be used (Err is then ErrMalformedResult).
// A 5xx status counts as unavailability.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream error from %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("upstream error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return e.StatusCode >= 500 && target == ErrUpstreamUnavailable
}

// NewUpstreamError creates an UpstreamError for a failure status.
func NewUpstreamError(endpoint string, statusCode int, message string) *UpstreamError {
	return &UpstreamError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

// UpstreamUnavailableError means the upstream could not be reached at all.
type UpstreamUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable at %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error        { return e.Err }
func (e *UpstreamUnavailableError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// NewUpstreamUnavailableError creates an UpstreamUnavailableError.
func NewUpstreamUnavailableError(endpoint string, err error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Endpoint: endpoint, Err: err}
}

// UpstreamTimeoutError means no reply arrived within the configured bound.
type UpstreamTimeoutError struct {
	Endpoint string
	Duration string
	Err      error
}

func (e *UpstreamTimeoutError) Error() string {
	if e.Duration == "" {
		return fmt.Sprintf("upstream %s timed out", e.Endpoint)
	}
	return fmt.Sprintf("upstream %s timed out after %s", e.Endpoint, e.Duration)
}

func (e *UpstreamTimeoutError) Unwrap() error        { return e.Err }
func (e *UpstreamTimeoutError) Is(target error) bool { return target == ErrTimeout }

// NewUpstreamTimeoutError creates an UpstreamTimeoutError.
func NewUpstreamTimeoutError(endpoint, duration string, err error) *UpstreamTimeoutError {
	return &UpstreamTimeoutError{Endpoint: endpoint, Duration: duration, Err: err}
}

// TransportWriteError is a failed write to one listener.
type TransportWriteError struct {
	ListenerID string
	Transport  string
	Err        error
}

func (e *TransportWriteError) Error() string {
	return fmt.Sprintf("%s write to listener %s failed: %v", e.Transport, e.ListenerID, e.Err)
}

func (e *TransportWriteError) Unwrap() error        { return e.Err }
func (e *TransportWriteError) Is(target error) bool { return target == ErrTransportClosed }

// NewTransportWriteError creates a TransportWriteError.
func NewTransportWriteError(listenerID, transport string, err error) *TransportWriteError {
	return &TransportWriteError{ListenerID: listenerID, Transport: transport, Err: err}
}

// ParseError is a declaration or config file that failed to decode.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsValidationError reports whether err rejects caller input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsConfigError reports whether err is a startup configuration failure.
func IsConfigError(err error) bool { return errors.Is(err, ErrInvalidConfig) }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsUpstreamUnavailable reports whether the upstream was unreachable or failed server-side.
func IsUpstreamUnavailable(err error) bool { return errors.Is(err, ErrUpstreamUnavailable) }

// IsTransportClosed reports whether err came from a dead listener.
func IsTransportClosed(err error) bool { return errors.Is(err, ErrTransportClosed) }

// WrapValidation turns err into a ValidationError on field.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapParse turns err into a ParseError for file.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapConfig turns err into a ConfigError for component.
func WrapConfig(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigError(component, err.Error(), err)
}
