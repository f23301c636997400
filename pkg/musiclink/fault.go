package musiclink

import (
	"errors"
	"fmt"
)

// Fault kinds. Every *Fault wraps exactly one of these, so callers branch with errors.Is.
var (
	// ErrTransport covers network failures, timeouts, non-success statuses and malformed bodies.
	ErrTransport = errors.New("transport fault")
	// ErrValidation is returned when a response lacks a load-bearing field.
	ErrValidation = errors.New("validation fault")
	// ErrUnplayable is returned when a detail response succeeded but has no audio URL.
	ErrUnplayable = errors.New("unplayable result")
	// ErrUnknownProvider is returned when no adapter is registered for a provider.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnsupported is returned when a provider does not offer an optional capability.
	ErrUnsupported = errors.New("not supported")
	// ErrExhausted is returned when no candidate produced a usable result.
	ErrExhausted = errors.New("no usable result")
)

// Fault is a provider-scoped failure. Code semantics belong to the provider.
type Fault struct {
	Kind     error
	Provider Provider
	Code     int
	Message  string
	Err      error
}

func (f *Fault) Error() string {
	msg := f.Message
	if msg == "" {
		msg = f.Kind.Error()
	}
	switch {
	case f.Provider != "" && f.Code != 0:
		msg = fmt.Sprintf("%s: %s (code %d)", f.Provider, msg, f.Code)
	case f.Provider != "":
		msg = fmt.Sprintf("%s: %s", f.Provider, msg)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (f *Fault) Unwrap() []error {
	errs := make([]error, 0, 2)
	if f.Kind != nil {
		errs = append(errs, f.Kind)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

func newFault(kind error, provider Provider, code int, message string, cause error) *Fault {
	return &Fault{Kind: kind, Provider: provider, Code: code, Message: message, Err: cause}
}

func transportFault(provider Provider, code int, message string, cause error) *Fault {
	return newFault(ErrTransport, provider, code, message, cause)
}

func validationFault(provider Provider, message string) *Fault {
	return newFault(ErrValidation, provider, 0, message, nil)
}

func unplayableFault(provider Provider, key string) *Fault {
	return newFault(ErrUnplayable, provider, 0, "no audio URL for "+key, nil)
}

// UnknownProviderFault reports an unregistered provider.
func UnknownProviderFault(provider Provider) *Fault {
	return newFault(ErrUnknownProvider, provider, 0, "", nil)
}

// UnsupportedFault reports a capability the provider does not offer.
func UnsupportedFault(provider Provider, what string) *Fault {
	return newFault(ErrUnsupported, provider, 0, what+" not supported", nil)
}

// ExhaustedFault reports that every candidate was tried without a usable result.
func ExhaustedFault(message string) *Fault {
	return newFault(ErrExhausted, "", 0, message, nil)
}

// FaultKind returns the kind sentinel of err, or nil if err carries none.
func FaultKind(err error) error {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return nil
}
