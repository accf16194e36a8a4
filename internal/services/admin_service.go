package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// AdminService is the override surface: it bypasses ownership checks but
// never the state-machine guards, and every action it takes is audited.
type AdminService struct {
	TripSvc  TripService
	Trips    domain.TripOfferRepository
	Bookings domain.BookingRequestRepository
	Ledger   domain.SeatLedgerRepository
	Audit    domain.AuditRecorder
	Notify   domain.Notifier
	Now      func() time.Time
}

func (s AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// ForceCancelTrip runs the normal cancellation cascade regardless of who
// owns the trip.
func (s AdminService) ForceCancelTrip(adminID, tripID int64, reason string) (models.TripOffer, CascadeEffects, error) {
	before, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	trip, effects, err := s.TripSvc.ForceCancel(tripID, reason)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	s.record(domain.AuditEntry{
		Actor:    fmt.Sprintf("admin:%d", adminID),
		Action:   "force_cancel_trip",
		Entity:   "trip",
		EntityID: tripID,
		Before:   string(before.Status),
		After:    string(trip.Status),
		Reason:   reason,
	})
	return trip, effects, nil
}

// CorrectBookingState moves a single booking into a terminal state outside
// the normal actor paths. Targets stay inside the state machine: the same
// from-status guards apply, only ownership is bypassed. Correcting to the
// status the booking already has is an idempotent no-op.
func (s AdminService) CorrectBookingState(adminID, bookingID int64, target models.BookingStatus, reason string) (models.BookingRequest, CancelEffects, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return models.BookingRequest{}, CancelEffects{}, err
	}
	if b.Status == target {
		return b, CancelEffects{}, nil
	}
	reason = utils.Truncate(reason, maxReasonLen)
	now := s.now()

	var (
		won     bool
		effects CancelEffects
	)
	switch target {
	case models.BookingStatusDeclined:
		if b.Status != models.BookingStatusPending {
			return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(b.Status), Attempted: "correct to declined"}
		}
		won, err = s.Bookings.MarkDeclined(b.ID, now)
	case models.BookingStatusCanceledByPassenger:
		switch b.Status {
		case models.BookingStatusPending:
			won, err = s.Bookings.CancelFromPending(b.ID, reason, now)
		case models.BookingStatusAccepted:
			won, err = s.Bookings.CancelFromAccepted(b.ID, target, reason, now)
			if err == nil && won {
				if _, derr := s.Ledger.Deallocate(b.TripID, b.Seats); derr != nil {
					return models.BookingRequest{}, CancelEffects{}, derr
				}
				effects = CancelEffects{LedgerReleased: b.Seats, RefundCreated: true}
			}
		default:
			return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(b.Status), Attempted: "correct to canceled_by_passenger"}
		}
	case models.BookingStatusCanceledByPlatform:
		if b.Status != models.BookingStatusAccepted {
			return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(b.Status), Attempted: "correct to canceled_by_platform"}
		}
		won, err = s.Bookings.CancelFromAccepted(b.ID, target, reason, now)
		if err == nil && won {
			if _, derr := s.Ledger.Deallocate(b.TripID, b.Seats); derr != nil {
				return models.BookingRequest{}, CancelEffects{}, derr
			}
			effects = CancelEffects{LedgerReleased: b.Seats, RefundCreated: true}
		}
	default:
		return models.BookingRequest{}, CancelEffects{}, domain.ValidationError{Field: "status", Msg: "unsupported correction target"}
	}
	if err != nil {
		return models.BookingRequest{}, CancelEffects{}, err
	}

	fresh, ferr := s.Bookings.GetByID(b.ID)
	if ferr != nil {
		return models.BookingRequest{}, CancelEffects{}, ferr
	}
	if !won {
		if fresh.Status == target {
			return fresh, CancelEffects{}, nil
		}
		return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(fresh.Status), Attempted: "correct"}
	}

	s.record(domain.AuditEntry{
		Actor:    fmt.Sprintf("admin:%d", adminID),
		Action:   "correct_booking_state",
		Entity:   "booking",
		EntityID: bookingID,
		Before:   string(b.Status),
		After:    string(fresh.Status),
		Reason:   reason,
	})
	if s.Notify != nil {
		s.Notify.BookingStatusChanged(fresh, b.Status)
		if effects.RefundCreated {
			s.Notify.RefundRequested(fresh)
		}
	}
	return fresh, effects, nil
}

func (s AdminService) record(e domain.AuditEntry) {
	if s.Audit == nil {
		return
	}
	if e.CorrelationID == "" {
		e.CorrelationID = uuid.NewString()
	}
	s.Audit.Record(e)
}
