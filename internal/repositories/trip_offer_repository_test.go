package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

func TestTripPublishLocksWindowAndTransitions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	arr := dep.Add(3 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(5), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "departure_at", "estimated_arrival_at"}).
			AddRow(8, dep.Add(6*time.Hour), arr.Add(6*time.Hour)))
	mock.ExpectExec("UPDATE trip_offers").
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := TripOfferRepository{DB: db}
	trip := models.TripOffer{ID: 10, DriverID: 5, DepartureAt: dep, EstimatedArrivalAt: arr, Status: models.TripStatusDraft}
	if err := repo.Publish(trip); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripPublishRejectsOverlappingWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	arr := dep.Add(3 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(5), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "departure_at", "estimated_arrival_at"}).
			AddRow(8, dep.Add(time.Hour), arr.Add(time.Hour)))
	mock.ExpectRollback()

	repo := TripOfferRepository{DB: db}
	trip := models.TripOffer{ID: 10, DriverID: 5, DepartureAt: dep, EstimatedArrivalAt: arr, Status: models.TripStatusDraft}
	err = repo.Publish(trip)
	if !domain.IsOverlap(err) {
		t.Fatalf("expected overlap error, got %v", err)
	}
}

func TestTripPublishIdempotentWhenAlreadyPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(5), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "departure_at", "estimated_arrival_at"}))
	mock.ExpectExec("UPDATE trip_offers").
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM trip_offers").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("published"))
	mock.ExpectCommit()

	repo := TripOfferRepository{DB: db}
	trip := models.TripOffer{ID: 10, DriverID: 5, Status: models.TripStatusPublished}
	if err := repo.Publish(trip); err != nil {
		t.Fatalf("republish should be a no-op, got %v", err)
	}
}

func TestTripUpdateStatusIfConditional(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trip_offers").
		WithArgs("canceled", "mobil rusak", int64(10), "draft", "published").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := TripOfferRepository{DB: db}
	won, err := repo.UpdateStatusIf(10,
		[]models.TripStatus{models.TripStatusDraft, models.TripStatusPublished},
		models.TripStatusCanceled, "mobil rusak")
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if !won {
		t.Fatal("expected conditional update to win")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripAutoCompleteDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("UPDATE trip_offers").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := TripOfferRepository{DB: db}
	n, err := repo.AutoCompleteDue(now)
	if err != nil {
		t.Fatalf("auto-complete error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 completed, got %d", n)
	}
}
