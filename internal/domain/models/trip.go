package models

import "time"

// TripStatus is the lifecycle state of a trip offer.
type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusPublished TripStatus = "published"
	TripStatusCanceled  TripStatus = "canceled"
	TripStatusCompleted TripStatus = "completed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCanceled || s == TripStatusCompleted
}

// TripOffer is a driver's scheduled, seat-limited ride offer.
// Offers are never physically deleted; canceled is a soft-terminal state.
type TripOffer struct {
	ID                 int64
	DriverID           int64
	VehicleID          int64
	RouteFrom          string
	RouteTo            string
	DepartureAt        time.Time
	EstimatedArrivalAt time.Time
	TotalSeats         int
	PricePerSeat       int64
	Status             TripStatus
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Overlaps reports whether the offer's [departure, arrival) window
// intersects the given one.
func (t TripOffer) Overlaps(departureAt, arrivalAt time.Time) bool {
	return t.DepartureAt.Before(arrivalAt) && t.EstimatedArrivalAt.After(departureAt)
}
