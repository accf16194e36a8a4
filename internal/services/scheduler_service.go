package services

import (
	"fmt"
	"time"

	"carpool/internal/domain"
	"carpool/internal/utils"
)

const (
	DefaultPendingTTLHours = 48
	minPendingTTLHours     = 1
	maxPendingTTLHours     = 168
)

// SchedulerService holds the periodic lifecycle operations. Both are pure
// predicate scans over conditional bulk writes: idempotent, safe to abort
// and re-run from scratch, and fine to run on several instances at once.
type SchedulerService struct {
	Trips      domain.TripOfferRepository
	Bookings   domain.BookingRequestRepository
	DefaultTTL int
	Now        func() time.Time
}

func (s SchedulerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// AutoCompleteTrips completes every published trip past its estimated
// arrival. The second run over the same data reports zero.
func (s SchedulerService) AutoCompleteTrips() (int64, error) {
	n, err := s.Trips.AutoCompleteDue(s.now())
	if err != nil {
		return 0, err
	}
	utils.LogEvent("", "scheduler", "auto_complete_trips", fmt.Sprintf("completed=%d", n))
	return n, nil
}

// ExpirePendings expires pending bookings older than the TTL. Out-of-range
// values clamp into [1h, 168h]; zero means the configured default. Pending
// bookings never held allocation, so there is no ledger effect.
func (s SchedulerService) ExpirePendings(ttlHours int) (int64, error) {
	if ttlHours <= 0 {
		ttlHours = s.DefaultTTL
	}
	if ttlHours <= 0 {
		ttlHours = DefaultPendingTTLHours
	}
	if ttlHours < minPendingTTLHours {
		ttlHours = minPendingTTLHours
	}
	if ttlHours > maxPendingTTLHours {
		ttlHours = maxPendingTTLHours
	}

	cutoff := s.now().Add(-time.Duration(ttlHours) * time.Hour)
	n, err := s.Bookings.ExpirePendingBefore(cutoff)
	if err != nil {
		return 0, err
	}
	utils.LogEvent("", "scheduler", "expire_pendings", fmt.Sprintf("ttl_hours=%d expired=%d", ttlHours, n))
	return n, nil
}
