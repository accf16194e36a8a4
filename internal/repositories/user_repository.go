package repositories

import (
	"database/sql"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

// GetByLogin resolves a user by email or username and returns the stored
// password hash alongside for the login check.
func (r UserRepository) GetByLogin(login string) (models.User, string, error) {
	var u models.User
	var hash string
	err := r.DB.QueryRow(`
		SELECT id, name, username, email, phone, password_hash, role, status
		FROM users
		WHERE email = ? OR username = ?
	`, login, login).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &hash, &u.Role, &u.Status)
	if err == sql.ErrNoRows {
		return models.User{}, "", domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "user read failed", Err: err}
	}
	return u, hash, nil
}

func (r UserRepository) GetByID(id int64) (models.User, error) {
	var u models.User
	err := r.DB.QueryRow(`
		SELECT id, name, username, email, phone, role, status
		FROM users
		WHERE id = ?
	`, id).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status)
	if err == sql.ErrNoRows {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "user read failed", Err: err}
	}
	return u, nil
}

func (r UserRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	var count int
	err := r.DB.QueryRow(`
		SELECT COUNT(*)
		FROM users
		WHERE email = ? OR username = ?
	`, email, username).Scan(&count)
	if err != nil {
		return false, domain.InternalError{Msg: "user check failed", Err: err}
	}
	return count > 0, nil
}

func (r UserRepository) Create(u *models.User, passwordHash string) error {
	res, err := r.DB.Exec(`
		INSERT INTO users (name, username, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'active', NOW(), NOW())
	`, u.Name, u.Username, u.Email, u.Phone, passwordHash, u.Role)
	if err != nil {
		return domain.InternalError{Msg: "user insert failed", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.InternalError{Msg: "user insert failed", Err: err}
	}
	u.ID = id
	u.Status = "active"
	return nil
}
