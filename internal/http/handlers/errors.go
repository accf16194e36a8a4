package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
)

func respondCoded(c *gin.Context, status int, code string, err error) {
	c.JSON(status, gin.H{
		"message":    err.Error(),
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondCoded(c, http.StatusBadRequest, "validation_error", err)
	case domain.IsNotFound(err):
		respondCoded(c, http.StatusNotFound, "not_found", err)
	case domain.IsForbidden(err):
		respondCoded(c, http.StatusForbidden, "forbidden", err)
	case domain.IsDuplicate(err):
		respondCoded(c, http.StatusConflict, "duplicate", err)
	case domain.IsOverlap(err):
		respondCoded(c, http.StatusConflict, "overlap", err)
	case domain.IsCapacity(err):
		respondCoded(c, http.StatusConflict, "capacity_exceeded", err)
	case domain.IsInvalidTransition(err):
		respondCoded(c, http.StatusConflict, "invalid_transition", err)
	case domain.IsInvalidState(err), domain.IsInvalidTripState(err):
		respondCoded(c, http.StatusUnprocessableEntity, "invalid_state", err)
	default:
		RespondError(c, http.StatusInternalServerError, "terjadi kesalahan", nil)
	}
}
