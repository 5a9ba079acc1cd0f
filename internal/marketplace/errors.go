package marketplace

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed marketplace call.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindMalformed   Kind = "malformed_response"
	KindApplication Kind = "application"
)

var (
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("invalid json")
	ErrApplication       = errors.New("application error")
)

// Error is the failure side of a marketplace call.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int
	Reason     string
	// Body is the parsed response for application errors.
	Body  map[string]any
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 5)
	parts = append(parts, "marketplace error")

	if e.Endpoint != "" {
		parts = append(parts, "endpoint="+e.Endpoint)
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		parts = append(parts, reason)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	case ErrApplication:
		return e.Kind == KindApplication
	}
	return false
}

// KindOf returns the failure kind of err, or "" if err is not a marketplace error.
func KindOf(err error) Kind {
	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr.Kind
	}
	return ""
}

// ReasonOf returns the human readable failure reason carried by err.
func ReasonOf(err error) string {
	var mErr *Error
	if errors.As(err, &mErr) && strings.TrimSpace(mErr.Reason) != "" {
		return mErr.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
