package domain

import (
	"time"

	"carpool/internal/domain/models"
)

// TripOfferRepository persists trip offers. Status-changing methods are
// conditional writes keyed on the expected prior status, so a stale read
// never silently overwrites a concurrent transition.
type TripOfferRepository interface {
	Create(t *models.TripOffer) error
	GetByID(id int64) (models.TripOffer, error)
	ListByDriver(driverID int64) ([]models.TripOffer, error)

	// Publish moves draft→published after re-checking the driver's
	// window-overlap invariant under a locking read. Returns
	// OverlapError or InvalidTransitionError on guard failure.
	Publish(t models.TripOffer) error

	// UpdateStatusIf applies the transition only when the current status
	// is one of from; reports whether a row changed.
	UpdateStatusIf(id int64, from []models.TripStatus, to models.TripStatus, reason string) (bool, error)

	// AutoCompleteDue bulk-completes published trips whose estimated
	// arrival is before now; returns the number of rows transitioned.
	AutoCompleteDue(now time.Time) (int64, error)
}

// BookingRequestRepository persists booking requests. All transitions are
// conditional on the prior status; the bool result reports whether this
// caller won the write.
type BookingRequestRepository interface {
	// CreateIfNoActive inserts the pending request unless the passenger
	// already holds a pending/accepted request on the same trip.
	CreateIfNoActive(b *models.BookingRequest) (bool, error)
	GetByID(id int64) (models.BookingRequest, error)
	ListByTrip(tripID int64) ([]models.BookingRequest, error)
	ListAcceptedByTrip(tripID int64) ([]models.BookingRequest, error)

	MarkAccepted(id int64, totalAmount int64, at time.Time) (bool, error)
	MarkDeclined(id int64, at time.Time) (bool, error)
	CancelFromPending(id int64, reason string, at time.Time) (bool, error)
	// CancelFromAccepted sets refund_needed; to is canceled_by_passenger
	// or canceled_by_platform.
	CancelFromAccepted(id int64, to models.BookingStatus, reason string, at time.Time) (bool, error)

	DeclineAutoPendingByTrip(tripID int64, at time.Time) (int64, error)
	ExpirePendingBefore(cutoff time.Time) (int64, error)
}

// SeatLedgerRepository owns the per-trip allocated-seat counter. Allocate
// and Deallocate are the only mutation paths and must be atomic
// conditional writes against the store.
type SeatLedgerRepository interface {
	// Allocate increments by seats only when the result stays within
	// totalSeats; returns the count after, or CapacityError.
	Allocate(tripID int64, totalSeats, seats int) (int, error)
	// Deallocate decrements, floor-guarded at zero. Releasing more than
	// allocated is an invariant breach surfaced as InternalError.
	Deallocate(tripID int64, seats int) (int, error)
	Find(tripID int64) (models.SeatLedger, bool, error)
	GetOrCreate(tripID int64) (models.SeatLedger, error)
}

// UserRepository backs register/login.
type UserRepository interface {
	GetByID(id int64) (models.User, error)
	GetByLogin(login string) (models.User, string, error)
	ExistsByEmailOrUsername(email, username string) (bool, error)
	Create(u *models.User, passwordHash string) error
}

// AuditEntry is one admin-triggered transition record.
type AuditEntry struct {
	Actor         string `json:"actor"`
	Action        string `json:"action"`
	Entity        string `json:"entity"`
	EntityID      int64  `json:"entity_id"`
	Before        string `json:"before"`
	After         string `json:"after"`
	Reason        string `json:"reason"`
	CorrelationID string `json:"correlation_id"`
}

// AuditRecorder receives admin override records, fire-and-forget.
type AuditRecorder interface {
	Record(e AuditEntry)
}

// Notifier is informed after status changes for downstream user-facing
// messages. Implementations must never fail the calling operation.
type Notifier interface {
	BookingStatusChanged(b models.BookingRequest, previous models.BookingStatus)
	TripStatusChanged(t models.TripOffer, previous models.TripStatus)
	RefundRequested(b models.BookingRequest)
}
