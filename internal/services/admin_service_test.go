package services

import (
	"testing"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

func newAdminService(trips *fakeTripRepo, bookings *fakeBookingRepo, ledger *fakeLedgerRepo, audit *recordingAudit, notify *recordingNotifier) AdminService {
	return AdminService{
		TripSvc:  newTripService(trips, bookings, ledger, notify),
		Trips:    trips,
		Bookings: bookings,
		Ledger:   ledger,
		Audit:    audit,
		Notify:   notify,
		Now:      fixedNow,
	}
}

func TestAdminForceCancelTripAudited(t *testing.T) {
	trips := newFakeTripRepo()
	bookings := newFakeBookingRepo()
	ledger := newFakeLedgerRepo()
	audit := &recordingAudit{}
	svc := newAdminService(trips, bookings, ledger, audit, &recordingNotifier{})

	trip := seedPublishedTrip(trips, 1, 4)
	canceled, _, err := svc.ForceCancelTrip(99, trip.ID, "laporan penipuan")
	if err != nil {
		t.Fatalf("force cancel error: %v", err)
	}
	if canceled.Status != models.TripStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	e := audit.entries[0]
	if e.Actor != "admin:99" || e.Action != "force_cancel_trip" || e.EntityID != trip.ID {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if e.Before != "published" || e.After != "canceled" {
		t.Fatalf("audit must record the transition, got %s -> %s", e.Before, e.After)
	}
}

func TestAdminCorrectBookingStatePlatformCancelReleasesSeats(t *testing.T) {
	trips := newFakeTripRepo()
	bookings := newFakeBookingRepo()
	ledger := newFakeLedgerRepo()
	audit := &recordingAudit{}
	notify := &recordingNotifier{}
	adminSvc := newAdminService(trips, bookings, ledger, audit, notify)
	bookingSvc := newBookingService(trips, bookings, ledger, notify)

	trip := seedPublishedTrip(trips, 1, 4)
	b, err := bookingSvc.Create(trip.ID, 10, 2, "")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if _, err := bookingSvc.Accept(b.ID, 1); err != nil {
		t.Fatalf("accept error: %v", err)
	}

	fixed, effects, err := adminSvc.CorrectBookingState(99, b.ID, models.BookingStatusCanceledByPlatform, "sengketa pembayaran")
	if err != nil {
		t.Fatalf("correct error: %v", err)
	}
	if fixed.Status != models.BookingStatusCanceledByPlatform || !fixed.RefundNeeded {
		t.Fatalf("unexpected corrected booking: %+v", fixed)
	}
	if effects.LedgerReleased != 2 || !effects.RefundCreated {
		t.Fatalf("unexpected effects: %+v", effects)
	}
	if ledger.allocated[trip.ID] != 0 {
		t.Fatalf("expected seats released, got %d", ledger.allocated[trip.ID])
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "correct_booking_state" {
		t.Fatalf("expected audit record, got %+v", audit.entries)
	}
	if notify.refundCount() != 1 {
		t.Fatalf("expected refund event, got %d", notify.refundCount())
	}

	// correcting to the status it already has is a no-op without effects
	again, effects, err := adminSvc.CorrectBookingState(99, b.ID, models.BookingStatusCanceledByPlatform, "")
	if err != nil {
		t.Fatalf("repeat correct error: %v", err)
	}
	if again.Status != models.BookingStatusCanceledByPlatform {
		t.Fatalf("expected unchanged status, got %s", again.Status)
	}
	if effects != (CancelEffects{}) || len(audit.entries) != 1 {
		t.Fatal("repeat correction must be effect-free and unaudited")
	}
}

func TestAdminCorrectBookingStateGuardsTransitions(t *testing.T) {
	trips := newFakeTripRepo()
	bookings := newFakeBookingRepo()
	ledger := newFakeLedgerRepo()
	adminSvc := newAdminService(trips, bookings, ledger, &recordingAudit{}, &recordingNotifier{})
	bookingSvc := newBookingService(trips, bookings, ledger, &recordingNotifier{})

	trip := seedPublishedTrip(trips, 1, 4)
	b, err := bookingSvc.Create(trip.ID, 10, 1, "")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	// accepted is not a valid admin target at all
	_, _, err = adminSvc.CorrectBookingState(99, b.ID, models.BookingStatusAccepted, "")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for accepted target, got %v", err)
	}

	// platform cancel applies to accepted bookings only
	_, _, err = adminSvc.CorrectBookingState(99, b.ID, models.BookingStatusCanceledByPlatform, "")
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state for pending booking, got %v", err)
	}

	// decline from pending works and needs no ledger
	fixed, effects, err := adminSvc.CorrectBookingState(99, b.ID, models.BookingStatusDeclined, "salah input")
	if err != nil {
		t.Fatalf("decline correction error: %v", err)
	}
	if fixed.Status != models.BookingStatusDeclined {
		t.Fatalf("expected declined, got %s", fixed.Status)
	}
	if effects != (CancelEffects{}) {
		t.Fatalf("decline correction must be ledger-free, got %+v", effects)
	}
}
