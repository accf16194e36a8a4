package repositories

import (
	"database/sql"
	"strings"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type TripOfferRepository struct {
	DB *sql.DB
}

const tripColumns = `id, driver_id, vehicle_id, route_from, route_to,
	departure_at, estimated_arrival_at, total_seats, price_per_seat,
	status, cancellation_reason, created_at, updated_at`

func scanTrip(row interface{ Scan(...any) error }) (models.TripOffer, error) {
	var t models.TripOffer
	var status string
	err := row.Scan(
		&t.ID, &t.DriverID, &t.VehicleID, &t.RouteFrom, &t.RouteTo,
		&t.DepartureAt, &t.EstimatedArrivalAt, &t.TotalSeats, &t.PricePerSeat,
		&status, &t.CancellationReason, &t.CreatedAt, &t.UpdatedAt,
	)
	t.Status = models.TripStatus(status)
	return t, err
}

func (r TripOfferRepository) Create(t *models.TripOffer) error {
	if t.DriverID <= 0 {
		return domain.ValidationError{Field: "driver_id", Msg: "id tidak valid"}
	}
	res, err := r.DB.Exec(`
		INSERT INTO trip_offers
			(driver_id, vehicle_id, route_from, route_to, departure_at,
			 estimated_arrival_at, total_seats, price_per_seat, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, t.DriverID, t.VehicleID, t.RouteFrom, t.RouteTo, t.DepartureAt,
		t.EstimatedArrivalAt, t.TotalSeats, t.PricePerSeat, string(t.Status))
	if err != nil {
		return domain.InternalError{Msg: "trip insert failed", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.InternalError{Msg: "trip insert failed", Err: err}
	}
	t.ID = id
	return nil
}

func (r TripOfferRepository) GetByID(id int64) (models.TripOffer, error) {
	if id <= 0 {
		return models.TripOffer{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	t, err := scanTrip(r.DB.QueryRow(`SELECT `+tripColumns+` FROM trip_offers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return models.TripOffer{}, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		return models.TripOffer{}, domain.InternalError{Msg: "trip read failed", Err: err}
	}
	return t, nil
}

func (r TripOfferRepository) ListByDriver(driverID int64) ([]models.TripOffer, error) {
	rows, err := r.DB.Query(`
		SELECT `+tripColumns+`
		FROM trip_offers
		WHERE driver_id = ?
		ORDER BY departure_at DESC, id DESC
	`, driverID)
	if err != nil {
		return nil, domain.InternalError{Msg: "trip list failed", Err: err}
	}
	defer rows.Close()

	out := []models.TripOffer{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, domain.InternalError{Msg: "trip scan failed", Err: err}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Publish moves draft→published. The driver's other published trips are
// locked for the duration of the check so two concurrent publishes cannot
// both miss each other's window.
func (r TripOfferRepository) Publish(t models.TripOffer) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return domain.InternalError{Msg: "trip publish failed", Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, departure_at, estimated_arrival_at
		FROM trip_offers
		WHERE driver_id = ? AND status = 'published' AND id <> ?
		FOR UPDATE
	`, t.DriverID, t.ID)
	if err != nil {
		return domain.InternalError{Msg: "trip publish failed", Err: err}
	}
	for rows.Next() {
		var other models.TripOffer
		if err := rows.Scan(&other.ID, &other.DepartureAt, &other.EstimatedArrivalAt); err != nil {
			rows.Close()
			return domain.InternalError{Msg: "trip publish failed", Err: err}
		}
		if other.Overlaps(t.DepartureAt, t.EstimatedArrivalAt) {
			rows.Close()
			return domain.OverlapError{DriverID: t.DriverID, ConflictTripID: other.ID}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.InternalError{Msg: "trip publish failed", Err: err}
	}

	res, err := tx.Exec(`
		UPDATE trip_offers
		SET status = 'published', updated_at = NOW()
		WHERE id = ? AND status = 'draft'
	`, t.ID)
	if err != nil {
		return domain.InternalError{Msg: "trip publish failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "trip publish failed", Err: err}
	}
	if affected == 0 {
		var current string
		if err := tx.QueryRow(`SELECT status FROM trip_offers WHERE id = ?`, t.ID).Scan(&current); err != nil {
			return domain.NotFoundError{Resource: "trip", Err: err}
		}
		if current == string(models.TripStatusPublished) {
			// republish of a published trip, nothing to do
			return tx.Commit()
		}
		return domain.InvalidTransitionError{From: current, To: string(models.TripStatusPublished)}
	}
	return tx.Commit()
}

// UpdateStatusIf applies the transition only when the current status is one
// of from. The cancellation reason is persisted when set.
func (r TripOfferRepository) UpdateStatusIf(id int64, from []models.TripStatus, to models.TripStatus, reason string) (bool, error) {
	if id <= 0 || len(from) == 0 {
		return false, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}

	placeholders := make([]string, len(from))
	args := []any{string(to)}
	sets := "status = ?, updated_at = NOW()"
	if reason != "" {
		sets = "status = ?, cancellation_reason = ?, updated_at = NOW()"
		args = append(args, reason)
	}
	args = append(args, id)
	for i, s := range from {
		placeholders[i] = "?"
		args = append(args, string(s))
	}

	res, err := r.DB.Exec(`
		UPDATE trip_offers
		SET `+sets+`
		WHERE id = ? AND status IN (`+strings.Join(placeholders, ",")+`)
	`, args...)
	if err != nil {
		return false, domain.InternalError{Msg: "trip status update failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, domain.InternalError{Msg: "trip status update failed", Err: err}
	}
	return affected > 0, nil
}

// AutoCompleteDue bulk-completes published trips already past arrival.
// Pure predicate scan, safe to re-run.
func (r TripOfferRepository) AutoCompleteDue(now time.Time) (int64, error) {
	res, err := r.DB.Exec(`
		UPDATE trip_offers
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'published' AND estimated_arrival_at < ?
	`, now)
	if err != nil {
		return 0, domain.InternalError{Msg: "trip auto-complete failed", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.InternalError{Msg: "trip auto-complete failed", Err: err}
	}
	return affected, nil
}
