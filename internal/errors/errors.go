// Package errors defines the error kinds adapters return and maps them to
// the text shown in the chat.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of the service that produced it.
type Kind string

const (
	KindTransport         Kind = "transport"
	KindDecode            Kind = "decode"
	KindNotFound          Kind = "not_found"
	KindMissingCredential Kind = "missing_credential"
	KindParseFailure      Kind = "parse_failure"
	KindUnknown           Kind = "unknown"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Service names used in user-facing messages.
const (
	ServiceCoinGecko = "CoinGecko"
	ServiceOpenAI    = "OpenAI"
)

type AppError struct {
	Kind     Kind
	Service  string
	Coin     string
	Message  string
	Severity Severity
	cause    error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewTransportError reports that service could not be reached or answered
// with a non-success status.
func NewTransportError(service string, cause error) *AppError {
	return &AppError{
		Kind:     KindTransport,
		Service:  service,
		Message:  fmt.Sprintf("%s: transport error", service),
		Severity: SeverityMedium,
		cause:    cause,
	}
}

// NewDecodeError reports a response that did not have the expected shape.
func NewDecodeError(service string, cause error) *AppError {
	return &AppError{
		Kind:     KindDecode,
		Service:  service,
		Message:  fmt.Sprintf("%s: unexpected response", service),
		Severity: SeverityHigh,
		cause:    cause,
	}
}

// NewNotFoundError reports a well-formed response without a usable quote for coin.
func NewNotFoundError(service, coin string) *AppError {
	return &AppError{
		Kind:     KindNotFound,
		Service:  service,
		Coin:     coin,
		Message:  fmt.Sprintf("%s: no usd quote for %q", service, coin),
		Severity: SeverityLow,
	}
}

// NewMissingCredentialError reports that the API key for service is not configured.
func NewMissingCredentialError(service string) *AppError {
	return &AppError{
		Kind:     KindMissingCredential,
		Service:  service,
		Message:  fmt.Sprintf("%s: api key not configured", service),
		Severity: SeverityMedium,
	}
}

// NewParseError reports an unrecognised chat command.
func NewParseError(cause error) *AppError {
	return &AppError{
		Kind:     KindParseFailure,
		Message:  "command not recognized",
		Severity: SeverityLow,
		cause:    cause,
	}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
