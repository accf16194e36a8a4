package repositories

import (
	"database/sql"
	"fmt"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// SeatLedgerRepository is the only writer of seat_ledgers. The capacity
// guard lives in the UPDATE's WHERE clause, so two racers can never both
// pass it on a stale read.
type SeatLedgerRepository struct {
	DB *sql.DB
}

// Allocate increments the trip's counter by seats, but only when the
// result stays within totalSeats. The ledger row is created lazily; a
// loser of the insert race falls through to the guarded update.
func (r SeatLedgerRepository) Allocate(tripID int64, totalSeats, seats int) (int, error) {
	if tripID <= 0 || seats <= 0 || totalSeats <= 0 {
		return 0, domain.ValidationError{Field: "seats", Msg: "id tidak valid"}
	}

	if _, err := r.DB.Exec(`
		INSERT INTO seat_ledgers (trip_id, allocated_seats)
		VALUES (?, 0)
		ON DUPLICATE KEY UPDATE trip_id = trip_id
	`, tripID); err != nil {
		return 0, domain.InternalError{Msg: "ledger create failed", Err: err}
	}

	res, err := r.DB.Exec(`
		UPDATE seat_ledgers
		SET allocated_seats = allocated_seats + ?
		WHERE trip_id = ? AND allocated_seats + ? <= ?
	`, seats, tripID, seats, totalSeats)
	if err != nil {
		return 0, domain.InternalError{Msg: "ledger allocate failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.InternalError{Msg: "ledger allocate failed", Err: err}
	}
	if affected == 0 {
		remaining := 0
		if ledger, ok, err := r.Find(tripID); err == nil && ok {
			if left := totalSeats - ledger.AllocatedSeats; left > 0 {
				remaining = left
			}
		}
		return 0, domain.CapacityError{TripID: tripID, Requested: seats, Remaining: remaining}
	}

	ledger, _, err := r.Find(tripID)
	if err != nil {
		return 0, err
	}
	return ledger.AllocatedSeats, nil
}

// Deallocate decrements the counter, refusing to go below zero. A refused
// release means some cascade double-released — a bug, not a race outcome —
// so it is logged distinctly and surfaced as an internal error.
func (r SeatLedgerRepository) Deallocate(tripID int64, seats int) (int, error) {
	if tripID <= 0 || seats <= 0 {
		return 0, domain.ValidationError{Field: "seats", Msg: "id tidak valid"}
	}

	res, err := r.DB.Exec(`
		UPDATE seat_ledgers
		SET allocated_seats = allocated_seats - ?
		WHERE trip_id = ? AND allocated_seats >= ?
	`, seats, tripID, seats)
	if err != nil {
		return 0, domain.InternalError{Msg: "ledger deallocate failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.InternalError{Msg: "ledger deallocate failed", Err: err}
	}
	if affected == 0 {
		utils.LogEvent("", "ledger", "ledger_invariant_breach",
			fmt.Sprintf("trip_id=%d release=%d exceeds current allocation", tripID, seats))
		return 0, domain.InternalError{Msg: "seat ledger release exceeds allocation"}
	}

	ledger, _, err := r.Find(tripID)
	if err != nil {
		return 0, err
	}
	return ledger.AllocatedSeats, nil
}

// Find reads the ledger; a missing row is not an error, it means zero
// seats allocated.
func (r SeatLedgerRepository) Find(tripID int64) (models.SeatLedger, bool, error) {
	var ledger models.SeatLedger
	err := r.DB.QueryRow(`
		SELECT trip_id, allocated_seats, updated_at
		FROM seat_ledgers
		WHERE trip_id = ?
	`, tripID).Scan(&ledger.TripID, &ledger.AllocatedSeats, &ledger.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.SeatLedger{TripID: tripID}, false, nil
	}
	if err != nil {
		return models.SeatLedger{}, false, domain.InternalError{Msg: "ledger read failed", Err: err}
	}
	return ledger, true, nil
}

// GetOrCreate materializes the row for diagnostics and snapshots.
func (r SeatLedgerRepository) GetOrCreate(tripID int64) (models.SeatLedger, error) {
	if tripID <= 0 {
		return models.SeatLedger{}, domain.ValidationError{Field: "trip_id", Msg: "id tidak valid"}
	}
	if _, err := r.DB.Exec(`
		INSERT INTO seat_ledgers (trip_id, allocated_seats)
		VALUES (?, 0)
		ON DUPLICATE KEY UPDATE trip_id = trip_id
	`, tripID); err != nil {
		return models.SeatLedger{}, domain.InternalError{Msg: "ledger create failed", Err: err}
	}
	ledger, _, err := r.Find(tripID)
	return ledger, err
}
