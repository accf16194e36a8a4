package services

import (
	"bytes"
	"strings"
	"testing"

	"carpool/internal/domain"
)

func TestDocsETicketForAcceptedBooking(t *testing.T) {
	trips := newFakeTripRepo()
	bookings := newFakeBookingRepo()
	ledger := newFakeLedgerRepo()
	bookingSvc := newBookingService(trips, bookings, ledger, &recordingNotifier{})

	trip := seedPublishedTrip(trips, 1, 4)
	b, err := bookingSvc.Create(trip.ID, 10, 2, "")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if _, err := bookingSvc.Accept(b.ID, 1); err != nil {
		t.Fatalf("accept error: %v", err)
	}

	docs := DocsService{Trips: trips, Bookings: bookings}
	pdf, filename, err := docs.GenerateETicket(b.ID)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if len(pdf) == 0 || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("expected PDF output")
	}
	if !strings.HasPrefix(filename, "ETICKET_") || !strings.HasSuffix(filename, ".pdf") {
		t.Fatalf("unexpected filename: %s", filename)
	}
}

func TestDocsETicketRefusedForPendingBooking(t *testing.T) {
	trips := newFakeTripRepo()
	bookings := newFakeBookingRepo()
	bookingSvc := newBookingService(trips, bookings, newFakeLedgerRepo(), &recordingNotifier{})

	trip := seedPublishedTrip(trips, 1, 4)
	b, err := bookingSvc.Create(trip.ID, 10, 1, "")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	docs := DocsService{Trips: trips, Bookings: bookings}
	if _, _, err := docs.GenerateETicket(b.ID); !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state for pending booking, got %v", err)
	}
}

func TestDocsETicketUsesLoaderWhenInjected(t *testing.T) {
	docs := DocsService{
		Loader: func(id int64) (ticketDocData, error) {
			return ticketDocData{
				BookingID:     id,
				TripID:        7,
				PassengerName: "Budi Santoso",
				Seats:         2,
				RouteFrom:     "Jakarta",
				RouteTo:       "Bandung",
				DepartureAt:   fixedNow(),
				PricePerSeat:  50000,
				TotalAmount:   100000,
			}, nil
		},
	}
	pdf, filename, err := docs.GenerateETicket(42)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("expected PDF output")
	}
	if filename != "ETICKET_42_Budi_Santoso.pdf" {
		t.Fatalf("unexpected filename: %s", filename)
	}
}
