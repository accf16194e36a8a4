package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain/models"
	"carpool/internal/http/middleware"
	"carpool/internal/services"
)

type AdminHandler struct {
	Svc services.AdminService
}

type adminCancelRequest struct {
	Reason string `json:"reason"`
}

// POST /api/admin/trips/:id/force-cancel
func (h AdminHandler) ForceCancelTrip(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req adminCancelRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}
	trip, effects, err := h.Svc.ForceCancelTrip(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trip":    toTripDTO(trip),
		"effects": effects,
	})
}

type correctBookingRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// PUT /api/admin/bookings/:id/correct-state
func (h AdminHandler) CorrectBookingState(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req correctBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	target := models.BookingStatus(strings.TrimSpace(req.Status))
	b, effects, err := h.Svc.CorrectBookingState(middleware.GetUserID(c), id, target, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": toBookingDTO(b),
		"effects": effects,
	})
}
