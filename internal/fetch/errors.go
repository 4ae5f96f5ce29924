package fetch

import (
	"errors"
	"fmt"
)

// ErrUnknownSheet is returned when a requested sheet label is not one of the
// configured selectable labels.
var ErrUnknownSheet = errors.New("unknown sheet")

// Kind classifies why a fetch failed.
type Kind string

const (
	// KindTransport covers network failures, timeouts and client setup errors.
	KindTransport Kind = "transport"
	// KindStatus means the source answered but not with the data (non-200, missing object).
	KindStatus Kind = "status"
	// KindMalformed means bytes were retrieved but are not a CSV table.
	KindMalformed Kind = "malformed"
	// KindUnsupported means the target URI scheme has no registered source.
	KindUnsupported Kind = "unsupported"
)

// FetchError reports that the data for a cycle could not be retrieved.
// It is fatal to the cycle and distinct from per-field parse problems.
type FetchError struct {
	Kind       Kind
	Target     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.Target, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func newFetchError(kind Kind, target string, err error) *FetchError {
	return &FetchError{Kind: kind, Target: target, Err: err}
}
