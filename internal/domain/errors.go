package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotConfigured      = errors.New("store not configured")
	ErrPayment            = errors.New("payment failed")
	ErrBookingNotRecorded = errors.New("booking not recorded")
	ErrInvalidTransition  = errors.New("invalid step transition")
	ErrSessionNotFound    = errors.New("booking session not found")
)

// InputError collects per-field validation messages.
type InputError struct {
	fields map[string][]string
}

func NewInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

func (e *InputError) Add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *InputError) Fields() map[string][]string { return e.fields }

func (e *InputError) Len() int { return len(e.fields) }

// OrNil returns e when at least one field failed, nil otherwise.
func (e *InputError) OrNil() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], ", ")))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// AsInputError unwraps err into an *InputError when possible.
func AsInputError(err error) *InputError {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}

// UnrecordedBookingError means money was captured but the booking row was not written.
// The transaction id is what staff need to reconcile by hand.
type UnrecordedBookingError struct {
	TransactionID string
	Err           error
}

func (e *UnrecordedBookingError) Error() string {
	return "Booking save failed. Please contact us with your PayPal transaction ID: " + e.TransactionID
}

func (e *UnrecordedBookingError) Unwrap() []error { return []error{ErrBookingNotRecorded, e.Err} }
