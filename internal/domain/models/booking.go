package models

import "time"

// BookingStatus is the lifecycle state of a passenger's seat request.
type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "pending"
	BookingStatusAccepted            BookingStatus = "accepted"
	BookingStatusDeclined            BookingStatus = "declined"
	BookingStatusDeclinedAuto        BookingStatus = "declined_auto"
	BookingStatusCanceledByPassenger BookingStatus = "canceled_by_passenger"
	BookingStatusCanceledByPlatform  BookingStatus = "canceled_by_platform"
	BookingStatusExpired             BookingStatus = "expired"
)

// Terminal reports whether the status admits no further transition.
// Accepted is not terminal: it can still be canceled.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted:
		return false
	}
	return true
}

// BookingRequest is one passenger's request for seats on one trip offer.
// It transitions out of pending exactly once; terminal re-application of
// the same action is an idempotent no-op.
type BookingRequest struct {
	ID                 int64
	TripID             int64
	PassengerID        int64
	Seats              int
	Note               string
	TotalAmount        int64
	Status             BookingStatus
	CancellationReason string
	RefundNeeded       bool
	DecidedAt          *time.Time
	CanceledAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
