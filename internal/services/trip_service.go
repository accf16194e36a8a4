package services

import (
	"fmt"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// TripService drives the trip offer lifecycle and the cancellation
// cascade across the trip's bookings and its seat ledger.
type TripService struct {
	Trips    domain.TripOfferRepository
	Bookings domain.BookingRequestRepository
	Ledger   domain.SeatLedgerRepository
	Notify   domain.Notifier
	Now      func() time.Time
}

// CreateTripInput carries the owner's new offer.
type CreateTripInput struct {
	DriverID           int64
	VehicleID          int64
	RouteFrom          string
	RouteTo            string
	DepartureAt        time.Time
	EstimatedArrivalAt time.Time
	TotalSeats         int
	PricePerSeat       int64
	Publish            bool
}

// CascadeEffects is the reconciliation summary of one trip cancellation.
// LedgerReleased sums the seats of the bookings this cascade canceled,
// never a booking count.
type CascadeEffects struct {
	DeclinedAuto       int `json:"declined_auto"`
	CanceledByPlatform int `json:"canceled_by_platform"`
	RefundsCreated     int `json:"refunds_created"`
	LedgerReleased     int `json:"ledger_released"`
}

func (s TripService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// Create validates and stores a new offer, optionally publishing it.
func (s TripService) Create(in CreateTripInput) (models.TripOffer, error) {
	if in.TotalSeats <= 0 {
		return models.TripOffer{}, domain.ValidationError{Field: "total_seats", Msg: "must be positive"}
	}
	if !in.DepartureAt.Before(in.EstimatedArrivalAt) {
		return models.TripOffer{}, domain.ValidationError{Field: "departure_at", Msg: "must be before estimated arrival"}
	}
	if in.PricePerSeat < 0 {
		return models.TripOffer{}, domain.ValidationError{Field: "price_per_seat", Msg: "must not be negative"}
	}

	t := models.TripOffer{
		DriverID:           in.DriverID,
		VehicleID:          in.VehicleID,
		RouteFrom:          utils.TrimOrEmpty(in.RouteFrom),
		RouteTo:            utils.TrimOrEmpty(in.RouteTo),
		DepartureAt:        in.DepartureAt,
		EstimatedArrivalAt: in.EstimatedArrivalAt,
		TotalSeats:         in.TotalSeats,
		PricePerSeat:       in.PricePerSeat,
		Status:             models.TripStatusDraft,
	}
	if err := s.Trips.Create(&t); err != nil {
		return models.TripOffer{}, err
	}
	utils.LogEvent("", "trip", "trip_created",
		fmt.Sprintf("trip_id=%d driver_id=%d seats=%d", t.ID, t.DriverID, t.TotalSeats))

	if in.Publish {
		return s.Publish(t.ID, in.DriverID)
	}
	return s.Trips.GetByID(t.ID)
}

// Publish re-checks the driver's window-overlap invariant and moves the
// offer draft→published. Publishing an already published trip is a no-op.
func (s TripService) Publish(tripID, driverID int64) (models.TripOffer, error) {
	t, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.TripOffer{}, err
	}
	if t.DriverID != driverID {
		return models.TripOffer{}, domain.ForbiddenError{Actor: "driver"}
	}
	if t.Status == models.TripStatusPublished {
		return t, nil
	}
	if err := s.Trips.Publish(t); err != nil {
		return models.TripOffer{}, err
	}
	fresh, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.TripOffer{}, err
	}
	utils.LogEvent("", "trip", "trip_published", fmt.Sprintf("trip_id=%d", tripID))
	s.notifyTrip(fresh, t.Status)
	return fresh, nil
}

// Unpublish moves published→draft so the owner can edit.
func (s TripService) Unpublish(tripID, driverID int64) (models.TripOffer, error) {
	t, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.TripOffer{}, err
	}
	if t.DriverID != driverID {
		return models.TripOffer{}, domain.ForbiddenError{Actor: "driver"}
	}
	if t.Status == models.TripStatusDraft {
		return t, nil
	}
	won, err := s.Trips.UpdateStatusIf(tripID, []models.TripStatus{models.TripStatusPublished}, models.TripStatusDraft, "")
	if err != nil {
		return models.TripOffer{}, err
	}
	fresh, ferr := s.Trips.GetByID(tripID)
	if ferr != nil {
		return models.TripOffer{}, ferr
	}
	if !won && fresh.Status != models.TripStatusDraft {
		return models.TripOffer{}, domain.InvalidTransitionError{From: string(fresh.Status), To: string(models.TripStatusDraft)}
	}
	s.notifyTrip(fresh, t.Status)
	return fresh, nil
}

// Cancel is the owner-facing cascade cancel.
func (s TripService) Cancel(tripID, driverID int64, reason string) (models.TripOffer, CascadeEffects, error) {
	t, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	if t.DriverID != driverID {
		return models.TripOffer{}, CascadeEffects{}, domain.ForbiddenError{Actor: "driver"}
	}
	return s.cascadeCancel(t, reason)
}

// ForceCancel is the admin override path: same cascade, ownership bypassed.
func (s TripService) ForceCancel(tripID int64, reason string) (models.TripOffer, CascadeEffects, error) {
	t, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	return s.cascadeCancel(t, reason)
}

// cascadeCancel runs the cancellation as a saga of idempotent conditional
// writes: trip status first, then pending bookings, then accepted ones,
// then a single ledger release summing exactly the seats of the bookings
// this run canceled. A crash at any point leaves every step safe to re-run.
func (s TripService) cascadeCancel(t models.TripOffer, reason string) (models.TripOffer, CascadeEffects, error) {
	reason = utils.Truncate(reason, maxReasonLen)
	now := s.now()

	won, err := s.Trips.UpdateStatusIf(t.ID,
		[]models.TripStatus{models.TripStatusDraft, models.TripStatusPublished},
		models.TripStatusCanceled, reason)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	if !won {
		fresh, ferr := s.Trips.GetByID(t.ID)
		if ferr != nil {
			return models.TripOffer{}, CascadeEffects{}, ferr
		}
		if fresh.Status != models.TripStatusCanceled {
			return models.TripOffer{}, CascadeEffects{}, domain.InvalidTransitionError{
				From: string(fresh.Status), To: string(models.TripStatusCanceled),
			}
		}
		// already canceled: an earlier run may have stopped right after
		// the status write, so the remaining steps still run; on a fully
		// finished cascade they find nothing left and report zero effects
	}

	declined, err := s.Bookings.DeclineAutoPendingByTrip(t.ID, now)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}

	accepted, err := s.Bookings.ListAcceptedByTrip(t.ID)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	canceledCount := 0
	seatSum := 0
	for _, b := range accepted {
		// per-row conditional write: a racing passenger cancel may win a
		// row instead, in which case its own path released those seats
		bwon, err := s.Bookings.CancelFromAccepted(b.ID, models.BookingStatusCanceledByPlatform, reason, now)
		if err != nil {
			return models.TripOffer{}, CascadeEffects{}, err
		}
		if !bwon {
			continue
		}
		canceledCount++
		seatSum += b.Seats
		if s.Notify != nil {
			if fresh, ferr := s.Bookings.GetByID(b.ID); ferr == nil {
				s.Notify.BookingStatusChanged(fresh, models.BookingStatusAccepted)
				s.Notify.RefundRequested(fresh)
			}
		}
	}
	if seatSum > 0 {
		if _, err := s.Ledger.Deallocate(t.ID, seatSum); err != nil {
			return models.TripOffer{}, CascadeEffects{}, err
		}
	}

	effects := CascadeEffects{
		DeclinedAuto:       int(declined),
		CanceledByPlatform: canceledCount,
		RefundsCreated:     canceledCount,
		LedgerReleased:     seatSum,
	}
	fresh, err := s.Trips.GetByID(t.ID)
	if err != nil {
		return models.TripOffer{}, CascadeEffects{}, err
	}
	utils.LogEvent("", "trip", "trip_canceled",
		fmt.Sprintf("trip_id=%d declined_auto=%d canceled_by_platform=%d ledger_released=%d",
			t.ID, effects.DeclinedAuto, effects.CanceledByPlatform, effects.LedgerReleased))
	s.notifyTrip(fresh, t.Status)
	return fresh, effects, nil
}

// Snapshot reads trip capacity; a missing ledger reads as zero allocated.
func (s TripService) Snapshot(tripID int64) (models.CapacitySnapshot, error) {
	t, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.CapacitySnapshot{}, err
	}
	ledger, _, err := s.Ledger.Find(tripID)
	if err != nil {
		return models.CapacitySnapshot{}, err
	}
	return models.NewCapacitySnapshot(tripID, t.TotalSeats, ledger.AllocatedSeats), nil
}

// ListByDriver returns the owner's offers, newest departure first.
func (s TripService) ListByDriver(driverID int64) ([]models.TripOffer, error) {
	return s.Trips.ListByDriver(driverID)
}

func (s TripService) notifyTrip(t models.TripOffer, previous models.TripStatus) {
	if s.Notify != nil && t.Status != previous {
		s.Notify.TripStatusChanged(t, previous)
	}
}
