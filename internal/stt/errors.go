package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of transcription failure categories. Every failure
// crossing an adapter boundary is normalized into one of these.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindNetworkError    Kind = "network_error"
	KindTimeout         Kind = "timeout"
	KindProviderError   Kind = "provider_error"
	KindEmptyTranscript Kind = "empty_transcript"
)

// Retryable reports whether a failure of this kind is worth retrying on
// another attempt. It is fixed per kind, never decided per error.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetworkError, KindTimeout:
		return true
	default:
		return false
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("stt: %s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("stt: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("stt: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// classifyTransport maps a transport-level error from net/http into the
// taxonomy. Cancellation and deadline expiry both count as timeout.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindTimeout, err)
	}
	return wrapError(KindNetworkError, err)
}

// classifyStatus maps a non-2xx HTTP status into the taxonomy.
func classifyStatus(status int, provider string) *Error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return newError(KindUnauthorized, fmt.Sprintf("%s rejected credentials (status %d)", provider, status))
	}
	return newError(KindProviderError, fmt.Sprintf("%s returned status %d", provider, status))
}

// AsError unwraps err into *Error, normalizing foreign errors into the
// taxonomy so callers never see a raw transport failure.
func AsError(err error) *Error {
	var sttErr *Error
	if errors.As(err, &sttErr) {
		return sttErr
	}
	return classifyTransport(err)
}
