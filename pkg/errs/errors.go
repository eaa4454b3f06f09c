// Package errs defines the error taxonomy shared by the tracker and backlog
// clients and the workflow engine.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched through the typed errors' Unwrap.
var (
	// ErrNotFound indicates an identifier, team, state or backlog item did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration indicates missing or malformed configuration.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransport indicates the remote exchange itself failed.
	ErrTransport = errors.New("transport failure")

	// ErrApplication indicates the remote service rejected the operation.
	ErrApplication = errors.New("remote service error")
)

// ConfigurationError collects every configuration problem found in one pass.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "configuration error: " + e.Problems[0]
	}
	return fmt.Sprintf("configuration error: %s", strings.Join(e.Problems, "; "))
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NotFoundError reports a resource that does not exist on the remote side.
type NotFoundError struct {
	// Kind is what was looked up, e.g. "ticket", "team", "state", "backlog item".
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransportError covers connectivity failures, timeouts and non-2xx responses.
type TransportError struct {
	Service    string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: transport error", e.Service, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (%d)", e.StatusCode)
	}
	switch {
	case e.Message != "":
		b.WriteString(": " + e.Message)
	case e.Err != nil:
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// ApplicationError carries the message a remote service returned when the
// exchange succeeded but the operation did not.
type ApplicationError struct {
	Service string
	Op      string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Service, e.Op, e.Message)
}

func (e *ApplicationError) Unwrap() error { return ErrApplication }

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfiguration reports whether err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsApplication reports whether err is or wraps an ApplicationError.
func IsApplication(err error) bool {
	return errors.Is(err, ErrApplication)
}
