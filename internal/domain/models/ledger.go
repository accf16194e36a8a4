package models

import "time"

// SeatLedger tracks seats currently committed (accepted) on a trip.
// One row per trip, created lazily on first allocation; absence means
// zero allocated seats.
type SeatLedger struct {
	TripID         int64
	AllocatedSeats int
	UpdatedAt      time.Time
}

// CapacitySnapshot is a point-in-time read of a trip's seat capacity.
type CapacitySnapshot struct {
	TripID         int64 `json:"trip_id"`
	TotalSeats     int   `json:"total_seats"`
	AllocatedSeats int   `json:"allocated_seats"`
	RemainingSeats int   `json:"remaining_seats"`
}

// NewCapacitySnapshot clamps remaining at zero so a shrunken capacity
// never reports negative seats.
func NewCapacitySnapshot(tripID int64, totalSeats, allocatedSeats int) CapacitySnapshot {
	remaining := totalSeats - allocatedSeats
	if remaining < 0 {
		remaining = 0
	}
	return CapacitySnapshot{
		TripID:         tripID,
		TotalSeats:     totalSeats,
		AllocatedSeats: allocatedSeats,
		RemainingSeats: remaining,
	}
}
