package models

const (
	RoleDriver    = "driver"
	RolePassenger = "passenger"
	RoleAdmin     = "admin"
)

// User is an authenticated account. Role decides which side of the
// booking flow the account acts on.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // driver / passenger / admin
	Status   string `json:"status"`
}
