package services

import (
	"testing"
	"time"

	"carpool/internal/domain/models"
)

func TestSchedulerAutoCompleteTripsIdempotent(t *testing.T) {
	trips := newFakeTripRepo()
	now := fixedNow()

	past := models.TripOffer{
		DriverID:           1,
		DepartureAt:        now.Add(-5 * time.Hour),
		EstimatedArrivalAt: now.Add(-2 * time.Hour),
		TotalSeats:         4,
		Status:             models.TripStatusPublished,
	}
	_ = trips.Create(&past)
	future := models.TripOffer{
		DriverID:           1,
		DepartureAt:        now.Add(2 * time.Hour),
		EstimatedArrivalAt: now.Add(5 * time.Hour),
		TotalSeats:         4,
		Status:             models.TripStatusPublished,
	}
	_ = trips.Create(&future)
	draft := models.TripOffer{
		DriverID:           1,
		DepartureAt:        now.Add(-5 * time.Hour),
		EstimatedArrivalAt: now.Add(-2 * time.Hour),
		TotalSeats:         4,
		Status:             models.TripStatusDraft,
	}
	_ = trips.Create(&draft)

	svc := SchedulerService{Trips: trips, Bookings: newFakeBookingRepo(), Now: fixedNow}

	n, err := svc.AutoCompleteTrips()
	if err != nil {
		t.Fatalf("auto-complete error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 completed, got %d", n)
	}
	got, _ := trips.GetByID(past.ID)
	if got.Status != models.TripStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	stillFuture, _ := trips.GetByID(future.ID)
	if stillFuture.Status != models.TripStatusPublished {
		t.Fatalf("future trip must stay published, got %s", stillFuture.Status)
	}
	stillDraft, _ := trips.GetByID(draft.ID)
	if stillDraft.Status != models.TripStatusDraft {
		t.Fatalf("draft trip must stay draft, got %s", stillDraft.Status)
	}

	// second run over the same data reports zero
	n, err = svc.AutoCompleteTrips()
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 on re-run, got %d", n)
	}
}

func TestSchedulerExpirePendingsAppliesTTL(t *testing.T) {
	bookings := newFakeBookingRepo()
	now := fixedNow()

	old := bookings.seed(models.BookingRequest{
		TripID: 1, PassengerID: 10, Seats: 1,
		Status: models.BookingStatusPending, CreatedAt: now.Add(-50 * time.Hour),
	})
	mid := bookings.seed(models.BookingRequest{
		TripID: 1, PassengerID: 11, Seats: 1,
		Status: models.BookingStatusPending, CreatedAt: now.Add(-30 * time.Hour),
	})
	young := bookings.seed(models.BookingRequest{
		TripID: 1, PassengerID: 12, Seats: 1,
		Status: models.BookingStatusPending, CreatedAt: now.Add(-10 * time.Hour),
	})
	acceptedOld := bookings.seed(models.BookingRequest{
		TripID: 1, PassengerID: 13, Seats: 1,
		Status: models.BookingStatusAccepted, CreatedAt: now.Add(-90 * time.Hour),
	})

	svc := SchedulerService{Trips: newFakeTripRepo(), Bookings: bookings, Now: fixedNow}

	// default 48h: only the 50h-old pending expires
	n, err := svc.ExpirePendings(0)
	if err != nil {
		t.Fatalf("expire error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired at 48h, got %d", n)
	}
	got, _ := bookings.GetByID(old.ID)
	if got.Status != models.BookingStatusExpired {
		t.Fatalf("expected expired, got %s", got.Status)
	}
	untouched, _ := bookings.GetByID(acceptedOld.ID)
	if untouched.Status != models.BookingStatusAccepted {
		t.Fatalf("accepted booking must not expire, got %s", untouched.Status)
	}

	// 24h TTL catches the 30h-old one, not the 10h-old
	n, err = svc.ExpirePendings(24)
	if err != nil {
		t.Fatalf("expire error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired at 24h, got %d", n)
	}
	got, _ = bookings.GetByID(mid.ID)
	if got.Status != models.BookingStatusExpired {
		t.Fatalf("expected expired, got %s", got.Status)
	}
	got, _ = bookings.GetByID(young.ID)
	if got.Status != models.BookingStatusPending {
		t.Fatalf("young pending must survive, got %s", got.Status)
	}
}

func TestSchedulerExpirePendingsClampsTTL(t *testing.T) {
	bookings := newFakeBookingRepo()
	now := fixedNow()

	// 200h requested clamps to 168h: a 180h-old pending expires
	veryOld := bookings.seed(models.BookingRequest{
		TripID: 1, PassengerID: 20, Seats: 1,
		Status: models.BookingStatusPending, CreatedAt: now.Add(-180 * time.Hour),
	})
	svc := SchedulerService{Trips: newFakeTripRepo(), Bookings: bookings, Now: fixedNow}

	n, err := svc.ExpirePendings(200)
	if err != nil {
		t.Fatalf("expire error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected clamp to 168h to expire the 180h booking, got %d", n)
	}
	got, _ := bookings.GetByID(veryOld.ID)
	if got.Status != models.BookingStatusExpired {
		t.Fatalf("expected expired, got %s", got.Status)
	}

	// negative input falls back to the default, then clamps
	recent := bookings.seed(models.BookingRequest{
		TripID: 1, PassengerID: 21, Seats: 1,
		Status: models.BookingStatusPending, CreatedAt: now.Add(-time.Hour),
	})
	n, err = svc.ExpirePendings(-5)
	if err != nil {
		t.Fatalf("expire error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing expired, got %d", n)
	}
	got, _ = bookings.GetByID(recent.ID)
	if got.Status != models.BookingStatusPending {
		t.Fatalf("recent pending must survive, got %s", got.Status)
	}
}
