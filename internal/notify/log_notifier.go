package notify

import (
	"fmt"

	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// LogNotifier is the fallback when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) BookingStatusChanged(b models.BookingRequest, previous models.BookingStatus) {
	utils.LogEvent("", "notify", "booking_status_changed",
		fmt.Sprintf("booking_id=%d trip_id=%d %s->%s", b.ID, b.TripID, previous, b.Status))
}

func (LogNotifier) TripStatusChanged(t models.TripOffer, previous models.TripStatus) {
	utils.LogEvent("", "notify", "trip_status_changed",
		fmt.Sprintf("trip_id=%d %s->%s", t.ID, previous, t.Status))
}

func (LogNotifier) RefundRequested(b models.BookingRequest) {
	utils.LogEvent("", "notify", "refund_requested",
		fmt.Sprintf("booking_id=%d trip_id=%d seats=%d", b.ID, b.TripID, b.Seats))
}
