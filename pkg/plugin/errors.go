package plugin

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is against the typed errors below.
var (
	// ErrAuthenticationFailed indicates carrier authentication failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrGateway indicates a remote carrier call failed.
	ErrGateway = errors.New("carrier gateway error")

	// ErrUnresolvableLocation indicates a location could not be geocoded.
	ErrUnresolvableLocation = errors.New("location cannot be resolved")

	// ErrMalformedRecord indicates a provider record lacked a required field.
	ErrMalformedRecord = errors.New("malformed provider record")

	// ErrUnsupported indicates the library does not implement an operation.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrInvalidConfiguration indicates a configuration value failed validation.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// AuthenticationError is returned when the carrier rejects the credentials or
// the authentication endpoint cannot be reached. It never carries the secret.
type AuthenticationError struct {
	Carrier      string
	Endpoint     string
	CredentialID string
	Cause        error
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("%s: authentication failed for %q at %s", e.Carrier, e.CredentialID, e.Endpoint)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthenticationFailed }

// GatewayError is returned when a remote carrier operation fails.
type GatewayError struct {
	Carrier   string
	Operation string
	Cause     error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s failed: %v", e.Carrier, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s failed", e.Carrier, e.Operation)
}

func (e *GatewayError) Unwrap() error { return e.Cause }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// UnresolvableLocationError is returned when a location without coordinates
// cannot be geocoded.
type UnresolvableLocationError struct {
	Query string
	Cause error
}

func (e *UnresolvableLocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot resolve coordinates for %q: %v", e.Query, e.Cause)
	}
	return fmt.Sprintf("cannot resolve coordinates for %q", e.Query)
}

func (e *UnresolvableLocationError) Unwrap() error { return e.Cause }

func (e *UnresolvableLocationError) Is(target error) bool { return target == ErrUnresolvableLocation }

// NormalizationError records a provider record that was skipped.
type NormalizationError struct {
	Index    int
	RecordID string
	Field    string
}

func (e *NormalizationError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("record %d (%s): missing %s", e.Index, e.RecordID, e.Field)
	}
	return fmt.Sprintf("record %d: missing %s", e.Index, e.Field)
}

func (e *NormalizationError) Is(target error) bool { return target == ErrMalformedRecord }

// UnsupportedOperationError is returned by operations a library declares but
// does not implement, so callers can tell "not built" from "nothing found".
type UnsupportedOperationError struct {
	Carrier   string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: %s is not supported", e.Carrier, e.Operation)
}

func (e *UnsupportedOperationError) Is(target error) bool { return target == ErrUnsupported }

// IsUnsupported reports whether err signals an unimplemented operation.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
