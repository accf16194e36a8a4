package domain

import (
	"errors"
	"fmt"
)

// NotFoundError signals an absent trip/booking/user.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ForbiddenError signals an actor mismatch: the caller is a real user but
// not the owner the operation requires.
type ForbiddenError struct {
	Actor string
	Msg   string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Actor != "" {
		return fmt.Sprintf("%s does not own this resource", e.Actor)
	}
	return "forbidden"
}

// InvalidStateError signals a booking transition guard failure: the booking
// is not in a state the requested action can act on.
type InvalidStateError struct {
	Current   string
	Attempted string
}

func (e InvalidStateError) Error() string {
	if e.Current != "" && e.Attempted != "" {
		return fmt.Sprintf("cannot %s a booking in status %s", e.Attempted, e.Current)
	}
	return "invalid booking state"
}

// InvalidTripStateError signals that the trip is not in a state that admits
// the booking operation (not published, or already departed).
type InvalidTripStateError struct {
	Status string
	Msg    string
}

func (e InvalidTripStateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Status != "" {
		return fmt.Sprintf("trip is %s", e.Status)
	}
	return "invalid trip state"
}

// InvalidTransitionError signals a trip-level lifecycle guard failure,
// e.g. canceling a completed trip.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	if e.From != "" && e.To != "" {
		return fmt.Sprintf("trip cannot go from %s to %s", e.From, e.To)
	}
	return "invalid trip transition"
}

// CapacityError signals that the seat ledger guard rejected an allocation.
// Retryable by the caller against a fresh read; never auto-retried here.
type CapacityError struct {
	TripID    int64
	Requested int
	Remaining int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded on trip %d: requested %d, remaining %d", e.TripID, e.Requested, e.Remaining)
}

// OverlapError signals that publishing would violate the one-published-trip
// per-window invariant for the driver.
type OverlapError struct {
	DriverID       int64
	ConflictTripID int64
}

func (e OverlapError) Error() string {
	return fmt.Sprintf("driver %d already has published trip %d overlapping this window", e.DriverID, e.ConflictTripID)
}

// DuplicateError signals a second non-terminal booking for the same
// passenger and trip.
type DuplicateError struct {
	Resource string
	Msg      string
}

func (e DuplicateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource != "" {
		return fmt.Sprintf("duplicate %s", e.Resource)
	}
	return "duplicate"
}

// ValidationError keeps the field-level input failures out of the state
// machine taxonomy.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// InternalError wraps storage failures and detected invariant breaches.
// A ledger deallocation past zero surfaces as one of these, never as an
// ordinary guard failure.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsInvalidTripState(err error) bool {
	var target InvalidTripStateError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsOverlap(err error) bool {
	var target OverlapError
	return errors.As(err, &target)
}

func IsDuplicate(err error) bool {
	var target DuplicateError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
