package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors wrapped by the typed errors below.
var (
	ErrMissingAuthHeader = errors.New("missing or invalid Authorization header")
	ErrRecipientNoEmail  = errors.New("recipient has no email")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrMalformedBody     = errors.New("malformed request body")
)

// ValidationError means a required field is missing or malformed. Maps to HTTP 400.
type ValidationError struct {
	Fields []string
	Reason string
	Err    error
}

func NewMissingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Err != nil:
		return e.Err.Error()
	case len(e.Fields) == 1:
		return fmt.Sprintf("%s is required", e.Fields[0])
	case len(e.Fields) > 1:
		return fmt.Sprintf("%s are required", joinFields(e.Fields))
	default:
		return "validation error"
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

// joinFields renders "a, b, and c" style lists.
func joinFields(fields []string) string {
	if len(fields) == 2 {
		return fields[0] + " and " + fields[1]
	}
	return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
}

// AuthError means the bearer credential was absent, malformed, expired or revoked. Maps to HTTP 401.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil && e.Reason != "" {
		return e.Reason + ": " + e.Err.Error()
	}
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unauthorized"
}

func (e *AuthError) Unwrap() error { return e.Err }

// DeliveryError means an external provider rejected the call or was unreachable. Maps to HTTP 500.
// StaleToken is set by push gateways when the target token is unregistered or invalid.
type DeliveryError struct {
	Provider   string
	Err        error
	StaleToken bool
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return e.Provider + ": delivery failed"
	}
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ConfigurationError is fatal at startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func NewDeliveryError(provider string, err error) *DeliveryError {
	return &DeliveryError{Provider: provider, Err: err}
}
