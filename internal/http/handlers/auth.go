package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/http/middleware"
	"carpool/internal/utils"
)

type AuthHandler struct {
	Users     domain.UserRepository
	JWTSecret string
}

// AuthUser is the user payload returned by login/register.
type AuthUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func toAuthUser(u models.User) AuthUser {
	return AuthUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Status:   u.Status,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, hash, err := h.Users.GetByLogin(strings.TrimSpace(req.Email))
	if err != nil {
		if domain.IsNotFound(err) {
			RespondError(c, http.StatusUnauthorized, "Email/username atau password salah", nil)
			return
		}
		RespondDomainError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		RespondError(c, http.StatusUnauthorized, "Email/username atau password salah", nil)
		return
	}

	tokenString, err := h.signToken(user)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal membuat token", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", user.Username)
	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  toAuthUser(user),
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// POST /api/auth/register
func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || len(req.Password) < 8 {
		RespondError(c, http.StatusBadRequest, "email, username dan password (min 8) wajib diisi", nil)
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case models.RoleDriver, models.RolePassenger:
	case "":
		role = models.RolePassenger
	default:
		RespondError(c, http.StatusBadRequest, "role tidak valid", nil)
		return
	}

	exists, err := h.Users.ExistsByEmailOrUsername(req.Email, req.Username)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if exists {
		RespondError(c, http.StatusBadRequest, "email atau username sudah terdaftar", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal memproses password", err)
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Username: req.Username,
		Email:    req.Email,
		Phone:    strings.TrimSpace(req.Phone),
		Role:     role,
	}
	if err := h.Users.Create(&user, string(hash)); err != nil {
		RespondDomainError(c, err)
		return
	}

	tokenString, err := h.signToken(user)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal membuat token", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "register", user.Username)
	c.JSON(http.StatusCreated, gin.H{
		"token": tokenString,
		"user":  toAuthUser(user),
	})
}

func (h AuthHandler) signToken(u models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(h.JWTSecret))
}
