package services

import (
	"fmt"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

const (
	maxNoteLen   = 500
	maxReasonLen = 255
)

// BookingService drives the booking request state machine. Capacity
// correctness comes from the ledger's conditional write, not from any
// in-process lock, so multiple service instances are safe concurrently.
type BookingService struct {
	Trips    domain.TripOfferRepository
	Bookings domain.BookingRequestRepository
	Ledger   domain.SeatLedgerRepository
	Notify   domain.Notifier
	Now      func() time.Time
}

// CancelEffects summarizes the side effects of a single-booking cancel.
type CancelEffects struct {
	LedgerReleased int  `json:"ledger_released"`
	RefundCreated  bool `json:"refund_created"`
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// Create files a pending request against a published, future trip.
func (s BookingService) Create(tripID, passengerID int64, seats int, note string) (models.BookingRequest, error) {
	if seats <= 0 {
		return models.BookingRequest{}, domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}
	trip, err := s.Trips.GetByID(tripID)
	if err != nil {
		return models.BookingRequest{}, err
	}
	if trip.Status != models.TripStatusPublished {
		return models.BookingRequest{}, domain.InvalidTripStateError{Status: string(trip.Status)}
	}
	if !trip.DepartureAt.After(s.now()) {
		return models.BookingRequest{}, domain.InvalidTripStateError{Msg: "trip already departed"}
	}
	if seats > trip.TotalSeats {
		return models.BookingRequest{}, domain.ValidationError{Field: "seats", Msg: "exceeds trip capacity"}
	}

	b := models.BookingRequest{
		TripID:      tripID,
		PassengerID: passengerID,
		Seats:       seats,
		Note:        utils.Truncate(note, maxNoteLen),
		TotalAmount: int64(seats) * trip.PricePerSeat,
	}
	created, err := s.Bookings.CreateIfNoActive(&b)
	if err != nil {
		return models.BookingRequest{}, err
	}
	if !created {
		return models.BookingRequest{}, domain.DuplicateError{
			Resource: "booking request",
			Msg:      "passenger already has an active request on this trip",
		}
	}

	fresh, err := s.Bookings.GetByID(b.ID)
	if err != nil {
		return b, nil
	}
	utils.LogEvent("", "booking", "booking_created",
		fmt.Sprintf("booking_id=%d trip_id=%d passenger_id=%d seats=%d", fresh.ID, tripID, passengerID, seats))
	s.notifyBooking(fresh, "")
	return fresh, nil
}

// Accept allocates seats then flips pending→accepted. The allocation comes
// first so the ledger invariant holds even mid-operation; losing the status
// write afterwards is compensated by a deallocate.
func (s BookingService) Accept(bookingID, driverID int64) (models.BookingRequest, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return models.BookingRequest{}, err
	}
	trip, err := s.Trips.GetByID(b.TripID)
	if err != nil {
		return models.BookingRequest{}, err
	}
	if trip.DriverID != driverID {
		return models.BookingRequest{}, domain.ForbiddenError{Actor: "driver"}
	}
	if b.Status == models.BookingStatusAccepted {
		return b, nil
	}
	if b.Status != models.BookingStatusPending {
		return models.BookingRequest{}, domain.InvalidStateError{Current: string(b.Status), Attempted: "accept"}
	}
	if trip.Status != models.TripStatusPublished {
		return models.BookingRequest{}, domain.InvalidTripStateError{Status: string(trip.Status)}
	}
	if !trip.DepartureAt.After(s.now()) {
		return models.BookingRequest{}, domain.InvalidTripStateError{Msg: "trip already departed"}
	}

	if _, err := s.Ledger.Allocate(trip.ID, trip.TotalSeats, b.Seats); err != nil {
		return models.BookingRequest{}, err
	}

	total := int64(b.Seats) * trip.PricePerSeat
	won, err := s.Bookings.MarkAccepted(b.ID, total, s.now())
	if err != nil {
		// allocation landed but the status write failed; release it so the
		// ledger keeps matching the accepted set
		s.releaseAllocation(trip.ID, b.ID, b.Seats)
		return models.BookingRequest{}, err
	}
	if !won {
		s.releaseAllocation(trip.ID, b.ID, b.Seats)
		fresh, err := s.Bookings.GetByID(b.ID)
		if err != nil {
			return models.BookingRequest{}, err
		}
		if fresh.Status == models.BookingStatusAccepted {
			return fresh, nil
		}
		return models.BookingRequest{}, domain.InvalidStateError{Current: string(fresh.Status), Attempted: "accept"}
	}

	fresh, err := s.Bookings.GetByID(b.ID)
	if err != nil {
		return models.BookingRequest{}, err
	}
	utils.LogEvent("", "booking", "booking_accepted",
		fmt.Sprintf("booking_id=%d trip_id=%d seats=%d", fresh.ID, trip.ID, fresh.Seats))
	s.notifyBooking(fresh, models.BookingStatusPending)
	return fresh, nil
}

// releaseAllocation compensates an allocation whose accept did not stick.
// A failed release is logged and leaves allocated above the accepted sum
// until the ledger is reconciled against the accepted bookings by hand.
func (s BookingService) releaseAllocation(tripID, bookingID int64, seats int) {
	if _, err := s.Ledger.Deallocate(tripID, seats); err != nil {
		utils.LogEvent("", "booking", "accept_compensation_failed",
			fmt.Sprintf("booking_id=%d trip_id=%d seats=%d err=%v", bookingID, tripID, seats, err))
	}
}

// Decline moves pending→declined. Re-declining a declined booking is a
// no-op success.
func (s BookingService) Decline(bookingID, driverID int64) (models.BookingRequest, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return models.BookingRequest{}, err
	}
	trip, err := s.Trips.GetByID(b.TripID)
	if err != nil {
		return models.BookingRequest{}, err
	}
	if trip.DriverID != driverID {
		return models.BookingRequest{}, domain.ForbiddenError{Actor: "driver"}
	}
	if b.Status == models.BookingStatusDeclined {
		return b, nil
	}
	if b.Status != models.BookingStatusPending {
		return models.BookingRequest{}, domain.InvalidStateError{Current: string(b.Status), Attempted: "decline"}
	}

	won, err := s.Bookings.MarkDeclined(b.ID, s.now())
	if err != nil {
		return models.BookingRequest{}, err
	}
	fresh, ferr := s.Bookings.GetByID(b.ID)
	if ferr != nil {
		return models.BookingRequest{}, ferr
	}
	if !won {
		if fresh.Status == models.BookingStatusDeclined {
			return fresh, nil
		}
		return models.BookingRequest{}, domain.InvalidStateError{Current: string(fresh.Status), Attempted: "decline"}
	}
	utils.LogEvent("", "booking", "booking_declined",
		fmt.Sprintf("booking_id=%d trip_id=%d", fresh.ID, trip.ID))
	s.notifyBooking(fresh, models.BookingStatusPending)
	return fresh, nil
}

// Cancel is the passenger's own cancel. Canceling an accepted booking is
// the one transition here that releases the ledger and flags a refund.
func (s BookingService) Cancel(bookingID, passengerID int64, reason string) (models.BookingRequest, CancelEffects, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return models.BookingRequest{}, CancelEffects{}, err
	}
	if b.PassengerID != passengerID {
		return models.BookingRequest{}, CancelEffects{}, domain.ForbiddenError{Actor: "passenger"}
	}
	if b.Status == models.BookingStatusCanceledByPassenger {
		return b, CancelEffects{}, nil
	}
	reason = utils.Truncate(reason, maxReasonLen)

	switch b.Status {
	case models.BookingStatusPending:
		won, err := s.Bookings.CancelFromPending(b.ID, reason, s.now())
		if err != nil {
			return models.BookingRequest{}, CancelEffects{}, err
		}
		fresh, ferr := s.Bookings.GetByID(b.ID)
		if ferr != nil {
			return models.BookingRequest{}, CancelEffects{}, ferr
		}
		if !won {
			if fresh.Status == models.BookingStatusCanceledByPassenger {
				return fresh, CancelEffects{}, nil
			}
			return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(fresh.Status), Attempted: "cancel"}
		}
		utils.LogEvent("", "booking", "booking_canceled",
			fmt.Sprintf("booking_id=%d trip_id=%d by=passenger from=pending", fresh.ID, fresh.TripID))
		s.notifyBooking(fresh, models.BookingStatusPending)
		return fresh, CancelEffects{}, nil

	case models.BookingStatusAccepted:
		won, err := s.Bookings.CancelFromAccepted(b.ID, models.BookingStatusCanceledByPassenger, reason, s.now())
		if err != nil {
			return models.BookingRequest{}, CancelEffects{}, err
		}
		if !won {
			fresh, ferr := s.Bookings.GetByID(b.ID)
			if ferr != nil {
				return models.BookingRequest{}, CancelEffects{}, ferr
			}
			if fresh.Status == models.BookingStatusCanceledByPassenger {
				return fresh, CancelEffects{}, nil
			}
			// a concurrent cascade or decline got there first; its path
			// owns the ledger release
			return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(fresh.Status), Attempted: "cancel"}
		}
		if _, err := s.Ledger.Deallocate(b.TripID, b.Seats); err != nil {
			return models.BookingRequest{}, CancelEffects{}, err
		}
		fresh, ferr := s.Bookings.GetByID(b.ID)
		if ferr != nil {
			return models.BookingRequest{}, CancelEffects{}, ferr
		}
		utils.LogEvent("", "booking", "booking_canceled",
			fmt.Sprintf("booking_id=%d trip_id=%d by=passenger from=accepted seats=%d", fresh.ID, fresh.TripID, fresh.Seats))
		s.notifyBooking(fresh, models.BookingStatusAccepted)
		if s.Notify != nil {
			s.Notify.RefundRequested(fresh)
		}
		return fresh, CancelEffects{LedgerReleased: b.Seats, RefundCreated: true}, nil
	}

	return models.BookingRequest{}, CancelEffects{}, domain.InvalidStateError{Current: string(b.Status), Attempted: "cancel"}
}

func (s BookingService) notifyBooking(b models.BookingRequest, previous models.BookingStatus) {
	if s.Notify != nil {
		s.Notify.BookingStatusChanged(b, previous)
	}
}
