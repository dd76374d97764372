package models

import (
	"errors"
	"fmt"
)

// ConfigError indicates a required service credential is absent. It is fatal
// for the stage that needs the credential and is never retried.
type ConfigError struct {
	Service string // "completion" or "content-extraction"
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s service credential not configured", e.Service)
}

// UpstreamError indicates a non-success response or transport failure from an
// external service.
type UpstreamError struct {
	Service    string
	StatusCode int // 0 for transport-level failures
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s service error (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s service error: %s", e.Service, e.Message)
}

// ParseError indicates a model reply was not valid structured data by either
// parse strategy. RawReply carries the full reply for diagnostics.
type ParseError struct {
	RawReply string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model reply as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a missing-credential error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUpstreamError reports whether err is an external-service failure.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsParseError reports whether err is a model-reply parse failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
