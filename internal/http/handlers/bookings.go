package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/http/middleware"
	"carpool/internal/services"
	"carpool/internal/utils"
)

type BookingHandler struct {
	Svc  services.BookingService
	Docs services.DocsService
}

type bookingDTO struct {
	ID                 int64  `json:"id"`
	TripID             int64  `json:"trip_id"`
	PassengerID        int64  `json:"passenger_id"`
	Seats              int    `json:"seats"`
	Note               string `json:"note,omitempty"`
	TotalAmount        int64  `json:"total_amount"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	RefundNeeded       bool   `json:"refund_needed"`
	DecidedAt          string `json:"decided_at,omitempty"`
	CanceledAt         string `json:"canceled_at,omitempty"`
}

func toBookingDTO(b models.BookingRequest) bookingDTO {
	dto := bookingDTO{
		ID:                 b.ID,
		TripID:             b.TripID,
		PassengerID:        b.PassengerID,
		Seats:              b.Seats,
		Note:               b.Note,
		TotalAmount:        b.TotalAmount,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		RefundNeeded:       b.RefundNeeded,
	}
	if b.DecidedAt != nil {
		dto.DecidedAt = utils.FormatDateTime(*b.DecidedAt)
	}
	if b.CanceledAt != nil {
		dto.CanceledAt = utils.FormatDateTime(*b.CanceledAt)
	}
	return dto
}

type createBookingRequest struct {
	Seats int    `json:"seats"`
	Note  string `json:"note"`
}

// POST /api/trips/:id/bookings
func (h BookingHandler) Create(c *gin.Context) {
	tripID, ok := ParamID(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Svc.Create(tripID, middleware.GetUserID(c), req.Seats, req.Note)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking":    toBookingDTO(b),
		"request_id": middleware.GetRequestID(c),
	})
}

// GET /api/bookings/:id
func (h BookingHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	b, err := h.Svc.Bookings.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if b.PassengerID != middleware.GetUserID(c) && middleware.GetRole(c) != models.RoleAdmin {
		trip, terr := h.Svc.Trips.GetByID(b.TripID)
		if terr != nil || trip.DriverID != middleware.GetUserID(c) {
			RespondDomainError(c, domain.ForbiddenError{Actor: "user", Msg: "tidak berhak melihat booking ini"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingDTO(b)})
}

// PUT /api/bookings/:id/accept
func (h BookingHandler) Accept(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	b, err := h.Svc.Accept(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingDTO(b)})
}

// PUT /api/bookings/:id/decline
func (h BookingHandler) Decline(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	b, err := h.Svc.Decline(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingDTO(b)})
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// POST /api/bookings/:id/cancel
func (h BookingHandler) Cancel(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}
	b, effects, err := h.Svc.Cancel(id, middleware.GetUserID(c), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": toBookingDTO(b),
		"effects": effects,
	})
}

// GET /api/bookings/:id/e-ticket
func (h BookingHandler) ETicket(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	b, err := h.Svc.Bookings.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if b.PassengerID != middleware.GetUserID(c) {
		RespondDomainError(c, domain.ForbiddenError{Actor: "passenger", Msg: "bukan pemilik booking"})
		return
	}

	docs := h.Docs
	docs.RequestID = middleware.GetRequestID(c)
	pdfBytes, filename, err := docs.GenerateETicket(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
