package repositories

import "database/sql"

// EnsureSchema creates the tables this service owns when they are absent.
// Columns are authoritative here, so repositories can rely on them without
// probing information_schema per query.
func EnsureSchema(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	username VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(30) NOT NULL DEFAULT 'passenger',
	status VARCHAR(30) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email),
	UNIQUE KEY uniq_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS trip_offers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	driver_id BIGINT NOT NULL,
	vehicle_id BIGINT NOT NULL DEFAULT 0,
	route_from VARCHAR(120) NOT NULL DEFAULT '',
	route_to VARCHAR(120) NOT NULL DEFAULT '',
	departure_at DATETIME NOT NULL,
	estimated_arrival_at DATETIME NOT NULL,
	total_seats INT NOT NULL,
	price_per_seat BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'draft',
	cancellation_reason VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_driver_status (driver_id, status),
	KEY idx_status_arrival (status, estimated_arrival_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS booking_requests (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	passenger_id BIGINT NOT NULL,
	seats INT NOT NULL,
	note VARCHAR(500) NOT NULL DEFAULT '',
	total_amount BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(30) NOT NULL DEFAULT 'pending',
	cancellation_reason VARCHAR(255) NOT NULL DEFAULT '',
	refund_needed TINYINT(1) NOT NULL DEFAULT 0,
	decided_at DATETIME NULL,
	canceled_at DATETIME NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_trip_status (trip_id, status),
	KEY idx_passenger_trip (passenger_id, trip_id),
	KEY idx_status_created (status, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS seat_ledgers (
	trip_id BIGINT PRIMARY KEY,
	allocated_seats INT NOT NULL DEFAULT 0,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
