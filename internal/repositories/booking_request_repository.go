package repositories

import (
	"database/sql"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type BookingRequestRepository struct {
	DB *sql.DB
}

const bookingColumns = `id, trip_id, passenger_id, seats, note, total_amount,
	status, cancellation_reason, refund_needed, decided_at, canceled_at,
	created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (models.BookingRequest, error) {
	var b models.BookingRequest
	var status string
	var decidedAt, canceledAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.TripID, &b.PassengerID, &b.Seats, &b.Note, &b.TotalAmount,
		&status, &b.CancellationReason, &b.RefundNeeded, &decidedAt, &canceledAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	b.Status = models.BookingStatus(status)
	if decidedAt.Valid {
		t := decidedAt.Time
		b.DecidedAt = &t
	}
	if canceledAt.Valid {
		t := canceledAt.Time
		b.CanceledAt = &t
	}
	return b, err
}

// CreateIfNoActive inserts a pending request in a single statement guarded
// by the no-second-active-request invariant, so two concurrent creates for
// the same (passenger, trip) cannot both land.
func (r BookingRequestRepository) CreateIfNoActive(b *models.BookingRequest) (bool, error) {
	if b.TripID <= 0 || b.PassengerID <= 0 || b.Seats <= 0 {
		return false, domain.ValidationError{Field: "booking", Msg: "id tidak valid"}
	}
	res, err := r.DB.Exec(`
		INSERT INTO booking_requests
			(trip_id, passenger_id, seats, note, total_amount, status, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, 'pending', NOW(), NOW()
		FROM DUAL
		WHERE NOT EXISTS (
			SELECT 1 FROM booking_requests
			WHERE trip_id = ? AND passenger_id = ? AND status IN ('pending','accepted')
		)
	`, b.TripID, b.PassengerID, b.Seats, b.Note, b.TotalAmount, b.TripID, b.PassengerID)
	if err != nil {
		return false, domain.InternalError{Msg: "booking insert failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, domain.InternalError{Msg: "booking insert failed", Err: err}
	}
	if affected == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, domain.InternalError{Msg: "booking insert failed", Err: err}
	}
	b.ID = id
	b.Status = models.BookingStatusPending
	return true, nil
}

func (r BookingRequestRepository) GetByID(id int64) (models.BookingRequest, error) {
	if id <= 0 {
		return models.BookingRequest{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	b, err := scanBooking(r.DB.QueryRow(`SELECT `+bookingColumns+` FROM booking_requests WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return models.BookingRequest{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.BookingRequest{}, domain.InternalError{Msg: "booking read failed", Err: err}
	}
	return b, nil
}

func (r BookingRequestRepository) ListByTrip(tripID int64) ([]models.BookingRequest, error) {
	return r.listByTrip(tripID, "")
}

func (r BookingRequestRepository) ListAcceptedByTrip(tripID int64) ([]models.BookingRequest, error) {
	return r.listByTrip(tripID, string(models.BookingStatusAccepted))
}

func (r BookingRequestRepository) listByTrip(tripID int64, status string) ([]models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE trip_id = ?`
	args := []any{tripID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "booking list failed", Err: err}
	}
	defer rows.Close()

	out := []models.BookingRequest{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, domain.InternalError{Msg: "booking scan failed", Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkAccepted wins only from pending; the caller allocates the ledger
// before this write and compensates if it loses.
func (r BookingRequestRepository) MarkAccepted(id int64, totalAmount int64, at time.Time) (bool, error) {
	return r.transition(`
		UPDATE booking_requests
		SET status = 'accepted', total_amount = ?, decided_at = ?, updated_at = NOW()
		WHERE id = ? AND status = 'pending'
	`, totalAmount, at, id)
}

func (r BookingRequestRepository) MarkDeclined(id int64, at time.Time) (bool, error) {
	return r.transition(`
		UPDATE booking_requests
		SET status = 'declined', decided_at = ?, updated_at = NOW()
		WHERE id = ? AND status = 'pending'
	`, at, id)
}

func (r BookingRequestRepository) CancelFromPending(id int64, reason string, at time.Time) (bool, error) {
	return r.transition(`
		UPDATE booking_requests
		SET status = 'canceled_by_passenger', cancellation_reason = ?, canceled_at = ?, updated_at = NOW()
		WHERE id = ? AND status = 'pending'
	`, reason, at, id)
}

// CancelFromAccepted releases an allocated reservation, so it always flags
// the refund. to must be canceled_by_passenger or canceled_by_platform.
func (r BookingRequestRepository) CancelFromAccepted(id int64, to models.BookingStatus, reason string, at time.Time) (bool, error) {
	if to != models.BookingStatusCanceledByPassenger && to != models.BookingStatusCanceledByPlatform {
		return false, domain.ValidationError{Field: "status", Msg: "invalid cancel target"}
	}
	return r.transition(`
		UPDATE booking_requests
		SET status = ?, cancellation_reason = ?, refund_needed = 1, canceled_at = ?, updated_at = NOW()
		WHERE id = ? AND status = 'accepted'
	`, string(to), reason, at, id)
}

// DeclineAutoPendingByTrip is cascade step two: every pending request on
// the trip becomes declined_auto in one bulk conditional write.
func (r BookingRequestRepository) DeclineAutoPendingByTrip(tripID int64, at time.Time) (int64, error) {
	res, err := r.DB.Exec(`
		UPDATE booking_requests
		SET status = 'declined_auto', decided_at = ?, updated_at = NOW()
		WHERE trip_id = ? AND status = 'pending'
	`, at, tripID)
	if err != nil {
		return 0, domain.InternalError{Msg: "booking bulk decline failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.InternalError{Msg: "booking bulk decline failed", Err: err}
	}
	return affected, nil
}

// ExpirePendingBefore transitions stale pending requests to expired.
// Only the exact predicate rows are touched regardless of age elsewhere.
func (r BookingRequestRepository) ExpirePendingBefore(cutoff time.Time) (int64, error) {
	res, err := r.DB.Exec(`
		UPDATE booking_requests
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND created_at < ?
	`, cutoff)
	if err != nil {
		return 0, domain.InternalError{Msg: "booking expire failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.InternalError{Msg: "booking expire failed", Err: err}
	}
	return affected, nil
}

func (r BookingRequestRepository) transition(query string, args ...any) (bool, error) {
	res, err := r.DB.Exec(query, args...)
	if err != nil {
		return false, domain.InternalError{Msg: "booking transition failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, domain.InternalError{Msg: "booking transition failed", Err: err}
	}
	return affected > 0, nil
}
