package vision

import (
	"errors"
	"fmt"
)

// Answer is the outcome of a generation call: either Success or Failure.
type Answer interface {
	String() string
	isAnswer()
}

// Success carries the model's text verbatim.
type Success struct {
	Text string
}

func (s Success) String() string { return s.Text }
func (Success) isAnswer() {}

// Failure describes why a remote call did not produce an answer.
type Failure struct {
	Kind    Kind
	Message string
}

// String renders the failure the way it is shown to users.
func (f Failure) String() string { return "Error: " + f.Message }
func (Failure) isAnswer() {}

// Kind classifies remote faults so callers can branch without parsing text.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindQuota
	KindInvalidRequest
	KindUnavailable
	KindEmptyResponse
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnavailable:
		return "unavailable"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// KindForStatus maps an HTTP status code returned by a provider to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindQuota
	case status >= 400 && status < 500:
		return KindInvalidRequest
	case status >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// RemoteError is a fault raised by a model provider.
type RemoteError struct {
	Kind Kind
	Err  error
}

// NewRemoteError tags err with kind.
func NewRemoteError(kind Kind, err error) *RemoteError {
	return &RemoteError{Kind: kind, Err: err}
}

func (e *RemoteError) Error() string { return e.Err.Error() }
func (e *RemoteError) Unwrap() error { return e.Err }

// KindOf reports the Kind of the first RemoteError in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// FailureFrom converts any error into a Failure.
func FailureFrom(err error) Failure {
	return Failure{Kind: KindOf(err), Message: err.Error()}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("model backend panicked: %w", err)
	}
	return fmt.Errorf("model backend panicked: %v", v)
}
