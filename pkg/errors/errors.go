// Package errors defines the typed errors shared by the relay library, the
// feed bridge, and the CLI. Each type carries enough structure for callers
// to branch on, and matches a sentinel through errors.Is so call sites do
// not need the concrete type.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	// ErrInvalidArgument indicates that a caller-supplied argument was absent or invalid
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrStreamFault indicates that a bridged stream delivered an error
	ErrStreamFault = errors.New("stream fault")
)

// InvalidArgumentError reports a missing or unusable argument to a public
// entry point. No state is mutated when it is returned.
type InvalidArgumentError struct {
	Param   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid argument %s: %s", e.Param, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// Is matches ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewInvalidArgumentError reports that param was missing or unusable.
func NewInvalidArgumentError(param, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Param: param, Message: message}
}

// NotFoundError reports a lookup miss for a named resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError reports that the identified resource does not exist.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// StreamFaultError records an error delivered by a bridged stream. The relay
// core never wraps stream errors itself; hosts that install a fault handler
// use this type when recording the fault.
type StreamFaultError struct {
	Source string
	Err    error
}

func (e *StreamFaultError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("stream %s faulted: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("stream faulted: %v", e.Err)
}

// Is matches ErrStreamFault.
func (e *StreamFaultError) Is(target error) bool {
	return target == ErrStreamFault
}

func (e *StreamFaultError) Unwrap() error {
	return e.Err
}

// NewStreamFaultError records an error pushed by the named stream.
func NewStreamFaultError(source string, err error) *StreamFaultError {
	return &StreamFaultError{Source: source, Err: err}
}

// ValidationError reports a field that failed validation, typically in a
// feed definition.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is matches ErrInvalidArgument, since a validation failure is a bad input.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ParseError reports a malformed document, carrying the format and the
// file it came from.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError reports a failed filesystem operation.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigError reports unusable configuration for a named component.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError reports unusable configuration for component.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// IsInvalidArgument reports whether err is a bad-input error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStreamFault reports whether err records a stream fault.
func IsStreamFault(err error) bool {
	return errors.Is(err, ErrStreamFault)
}

// WrapParse wraps err as a ParseError for the given format and file.
// A nil err passes through.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapIO wraps err as an IOError for the given operation and path.
// A nil err passes through.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}
