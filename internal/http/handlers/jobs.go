package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carpool/internal/http/middleware"
	"carpool/internal/services"
)

// JobsHandler exposes the scheduler operations for external cron callers.
// Requests must carry the shared job token; every run is idempotent so a
// retried cron tick is safe.
type JobsHandler struct {
	Svc   services.SchedulerService
	Token string
}

func (h JobsHandler) authorized(c *gin.Context) bool {
	if h.Token == "" || c.GetHeader("X-Job-Token") != h.Token {
		RespondError(c, http.StatusUnauthorized, "job token tidak valid", nil)
		return false
	}
	return true
}

// POST /api/jobs/auto-complete-trips
func (h JobsHandler) AutoCompleteTrips(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	n, err := h.Svc.AutoCompleteTrips()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"completed":  n,
		"request_id": middleware.GetRequestID(c),
	})
}

// POST /api/jobs/expire-pendings?ttl_hours=48
func (h JobsHandler) ExpirePendings(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	ttl := 0
	if raw := c.Query("ttl_hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "ttl_hours tidak valid", err)
			return
		}
		ttl = v
	}
	n, err := h.Svc.ExpirePendings(ttl)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"expired":    n,
		"request_id": middleware.GetRequestID(c),
	})
}
