package generate

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Failure kinds. Every error returned by a Generator matches exactly one of
// these with errors.Is.
var (
	// ErrValidation means the request is unusable as given: the raw idea is
	// too short or required upstream context is missing. Correctable by the
	// user.
	ErrValidation = errors.New("validation failed")

	// ErrNoTextResponse means the model reply carried no text block.
	ErrNoTextResponse = errors.New("no text response")

	// ErrMalformedJSON means the extracted payload did not parse into the
	// section's content shape.
	ErrMalformedJSON = errors.New("malformed JSON")

	// ErrTransport covers network, auth and rate-limit failures talking to
	// the model endpoint.
	ErrTransport = errors.New("transport error")
)

// errNullContent is the cause of ErrMalformedJSON when the payload is null.
var errNullContent = errors.New("model returned null content")

// Error is a classified generation failure for one section.
type Error struct {
	Kind    error
	Section plan.SectionKey
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generate %s: %v", e.Section, e.Kind)
	}
	return fmt.Sprintf("generate %s: %v: %v", e.Section, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, key plan.SectionKey, err error) *Error {
	return &Error{Kind: kind, Section: key, Err: err}
}

// KindOf returns the failure kind of err, or nil when err is not a
// generation failure.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNoTextResponse, ErrMalformedJSON, ErrTransport} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
