package services

import (
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

// The fakes below honor the same conditional-write contract as the SQL
// repositories: every transition checks the prior state under a lock and
// reports whether this caller won, which is what makes the concurrency
// tests meaningful.

type fakeTripRepo struct {
	mu     sync.Mutex
	nextID int64
	trips  map[int64]models.TripOffer
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: map[int64]models.TripOffer{}}
}

func (r *fakeTripRepo) Create(t *models.TripOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.trips[t.ID] = *t
	return nil
}

func (r *fakeTripRepo) GetByID(id int64) (models.TripOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return models.TripOffer{}, domain.NotFoundError{Resource: "trip"}
	}
	return t, nil
}

func (r *fakeTripRepo) ListByDriver(driverID int64) ([]models.TripOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.TripOffer{}
	for _, t := range r.trips {
		if t.DriverID == driverID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) Publish(t models.TripOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.trips {
		if other.DriverID != t.DriverID || other.ID == t.ID {
			continue
		}
		if other.Status == models.TripStatusPublished && other.Overlaps(t.DepartureAt, t.EstimatedArrivalAt) {
			return domain.OverlapError{DriverID: t.DriverID, ConflictTripID: other.ID}
		}
	}
	cur, ok := r.trips[t.ID]
	if !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	if cur.Status == models.TripStatusPublished {
		return nil
	}
	if cur.Status != models.TripStatusDraft {
		return domain.InvalidTransitionError{From: string(cur.Status), To: string(models.TripStatusPublished)}
	}
	cur.Status = models.TripStatusPublished
	r.trips[t.ID] = cur
	return nil
}

func (r *fakeTripRepo) UpdateStatusIf(id int64, from []models.TripStatus, to models.TripStatus, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.trips[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if cur.Status == f {
			cur.Status = to
			if reason != "" {
				cur.CancellationReason = reason
			}
			r.trips[id] = cur
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTripRepo) AutoCompleteDue(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.trips {
		if t.Status == models.TripStatusPublished && t.EstimatedArrivalAt.Before(now) {
			t.Status = models.TripStatusCompleted
			r.trips[id] = t
			n++
		}
	}
	return n, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]models.BookingRequest
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[int64]models.BookingRequest{}}
}

func (r *fakeBookingRepo) seed(b models.BookingRequest) models.BookingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == 0 {
		r.nextID++
		b.ID = r.nextID
	} else if b.ID > r.nextID {
		r.nextID = b.ID
	}
	r.bookings[b.ID] = b
	return b
}

func (r *fakeBookingRepo) CreateIfNoActive(b *models.BookingRequest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.bookings {
		if other.TripID == b.TripID && other.PassengerID == b.PassengerID &&
			(other.Status == models.BookingStatusPending || other.Status == models.BookingStatusAccepted) {
			return false, nil
		}
	}
	r.nextID++
	b.ID = r.nextID
	b.Status = models.BookingStatusPending
	b.CreatedAt = time.Now()
	r.bookings[b.ID] = *b
	return true, nil
}

func (r *fakeBookingRepo) GetByID(id int64) (models.BookingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.BookingRequest{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (r *fakeBookingRepo) ListByTrip(tripID int64) ([]models.BookingRequest, error) {
	return r.list(tripID, "")
}

func (r *fakeBookingRepo) ListAcceptedByTrip(tripID int64) ([]models.BookingRequest, error) {
	return r.list(tripID, models.BookingStatusAccepted)
}

func (r *fakeBookingRepo) list(tripID int64, status models.BookingStatus) ([]models.BookingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.BookingRequest{}
	for _, b := range r.bookings {
		if b.TripID != tripID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBookingRepo) MarkAccepted(id int64, totalAmount int64, at time.Time) (bool, error) {
	return r.transition(id, models.BookingStatusPending, func(b *models.BookingRequest) {
		b.Status = models.BookingStatusAccepted
		b.TotalAmount = totalAmount
		b.DecidedAt = &at
	})
}

func (r *fakeBookingRepo) MarkDeclined(id int64, at time.Time) (bool, error) {
	return r.transition(id, models.BookingStatusPending, func(b *models.BookingRequest) {
		b.Status = models.BookingStatusDeclined
		b.DecidedAt = &at
	})
}

func (r *fakeBookingRepo) CancelFromPending(id int64, reason string, at time.Time) (bool, error) {
	return r.transition(id, models.BookingStatusPending, func(b *models.BookingRequest) {
		b.Status = models.BookingStatusCanceledByPassenger
		b.CancellationReason = reason
		b.CanceledAt = &at
	})
}

func (r *fakeBookingRepo) CancelFromAccepted(id int64, to models.BookingStatus, reason string, at time.Time) (bool, error) {
	if to != models.BookingStatusCanceledByPassenger && to != models.BookingStatusCanceledByPlatform {
		return false, domain.ValidationError{Field: "status", Msg: "invalid cancel target"}
	}
	return r.transition(id, models.BookingStatusAccepted, func(b *models.BookingRequest) {
		b.Status = to
		b.CancellationReason = reason
		b.RefundNeeded = true
		b.CanceledAt = &at
	})
}

func (r *fakeBookingRepo) transition(id int64, from models.BookingStatus, apply func(*models.BookingRequest)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	apply(&b)
	r.bookings[id] = b
	return true, nil
}

func (r *fakeBookingRepo) DeclineAutoPendingByTrip(tripID int64, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.bookings {
		if b.TripID == tripID && b.Status == models.BookingStatusPending {
			b.Status = models.BookingStatusDeclinedAuto
			b.DecidedAt = &at
			r.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) ExpirePendingBefore(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.bookings {
		if b.Status == models.BookingStatusPending && b.CreatedAt.Before(cutoff) {
			b.Status = models.BookingStatusExpired
			r.bookings[id] = b
			n++
		}
	}
	return n, nil
}

type fakeLedgerRepo struct {
	mu        sync.Mutex
	allocated map[int64]int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{allocated: map[int64]int{}}
}

func (r *fakeLedgerRepo) Allocate(tripID int64, totalSeats, seats int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.allocated[tripID]
	if cur+seats > totalSeats {
		remaining := totalSeats - cur
		if remaining < 0 {
			remaining = 0
		}
		return 0, domain.CapacityError{TripID: tripID, Requested: seats, Remaining: remaining}
	}
	r.allocated[tripID] = cur + seats
	return cur + seats, nil
}

func (r *fakeLedgerRepo) Deallocate(tripID int64, seats int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.allocated[tripID]
	if cur < seats {
		return 0, domain.InternalError{Msg: "seat ledger release exceeds allocation"}
	}
	r.allocated[tripID] = cur - seats
	return cur - seats, nil
}

func (r *fakeLedgerRepo) Find(tripID int64) (models.SeatLedger, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.allocated[tripID]
	return models.SeatLedger{TripID: tripID, AllocatedSeats: cur}, ok, nil
}

func (r *fakeLedgerRepo) GetOrCreate(tripID int64) (models.SeatLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.allocated[tripID]
	r.allocated[tripID] = cur
	return models.SeatLedger{TripID: tripID, AllocatedSeats: cur}, nil
}

type recordingNotifier struct {
	mu             sync.Mutex
	bookingChanges []models.BookingRequest
	tripChanges    []models.TripOffer
	refunds        []models.BookingRequest
}

func (n *recordingNotifier) BookingStatusChanged(b models.BookingRequest, previous models.BookingStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookingChanges = append(n.bookingChanges, b)
}

func (n *recordingNotifier) TripStatusChanged(t models.TripOffer, previous models.TripStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tripChanges = append(n.tripChanges, t)
}

func (n *recordingNotifier) RefundRequested(b models.BookingRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunds = append(n.refunds, b)
}

func (n *recordingNotifier) refundCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.refunds)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *recordingAudit) Record(e domain.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}
