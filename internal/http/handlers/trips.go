package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/http/middleware"
	"carpool/internal/services"
	"carpool/internal/utils"
)

type TripHandler struct {
	Svc services.TripService
}

type tripDTO struct {
	ID                 int64  `json:"id"`
	DriverID           int64  `json:"driver_id"`
	VehicleID          int64  `json:"vehicle_id"`
	RouteFrom          string `json:"route_from"`
	RouteTo            string `json:"route_to"`
	DepartureAt        string `json:"departure_at"`
	EstimatedArrivalAt string `json:"estimated_arrival_at"`
	TotalSeats         int    `json:"total_seats"`
	PricePerSeat       int64  `json:"price_per_seat"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

func toTripDTO(t models.TripOffer) tripDTO {
	return tripDTO{
		ID:                 t.ID,
		DriverID:           t.DriverID,
		VehicleID:          t.VehicleID,
		RouteFrom:          t.RouteFrom,
		RouteTo:            t.RouteTo,
		DepartureAt:        utils.FormatDateTime(t.DepartureAt),
		EstimatedArrivalAt: utils.FormatDateTime(t.EstimatedArrivalAt),
		TotalSeats:         t.TotalSeats,
		PricePerSeat:       t.PricePerSeat,
		Status:             string(t.Status),
		CancellationReason: t.CancellationReason,
	}
}

type createTripRequest struct {
	VehicleID          int64  `json:"vehicle_id"`
	RouteFrom          string `json:"route_from"`
	RouteTo            string `json:"route_to"`
	DepartureAt        string `json:"departure_at"`
	EstimatedArrivalAt string `json:"estimated_arrival_at"`
	TotalSeats         int    `json:"total_seats"`
	PricePerSeat       int64  `json:"price_per_seat"`
	Publish            bool   `json:"publish"`
}

// POST /api/trips
func (h TripHandler) Create(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	departure, err := utils.ParseDateTime(req.DepartureAt)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "departure_at tidak valid", err)
		return
	}
	arrival, err := utils.ParseDateTime(req.EstimatedArrivalAt)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "estimated_arrival_at tidak valid", err)
		return
	}

	trip, err := h.Svc.Create(services.CreateTripInput{
		DriverID:           middleware.GetUserID(c),
		VehicleID:          req.VehicleID,
		RouteFrom:          req.RouteFrom,
		RouteTo:            req.RouteTo,
		DepartureAt:        departure,
		EstimatedArrivalAt: arrival,
		TotalSeats:         req.TotalSeats,
		PricePerSeat:       req.PricePerSeat,
		Publish:            req.Publish,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"trip":       toTripDTO(trip),
		"request_id": middleware.GetRequestID(c),
	})
}

// GET /api/trips
func (h TripHandler) ListMine(c *gin.Context) {
	trips, err := h.Svc.ListByDriver(middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]tripDTO, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripDTO(t))
	}
	c.JSON(http.StatusOK, gin.H{"trips": out})
}

// GET /api/trips/:id
func (h TripHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	trip, err := h.Svc.Trips.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": toTripDTO(trip)})
}

// PUT /api/trips/:id/publish
func (h TripHandler) Publish(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	trip, err := h.Svc.Publish(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": toTripDTO(trip)})
}

// PUT /api/trips/:id/unpublish
func (h TripHandler) Unpublish(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	trip, err := h.Svc.Unpublish(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": toTripDTO(trip)})
}

type cancelTripRequest struct {
	Reason string `json:"reason"`
}

// POST /api/trips/:id/cancel
func (h TripHandler) Cancel(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req cancelTripRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}
	trip, effects, err := h.Svc.Cancel(id, middleware.GetUserID(c), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trip":    toTripDTO(trip),
		"effects": effects,
	})
}

// GET /api/trips/:id/capacity
func (h TripHandler) Capacity(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	snap, err := h.Svc.Snapshot(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"capacity": snap})
}

// GET /api/trips/:id/bookings
func (h TripHandler) Bookings(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	trip, err := h.Svc.Trips.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if trip.DriverID != middleware.GetUserID(c) {
		RespondDomainError(c, domain.ForbiddenError{Actor: "driver", Msg: "bukan pemilik trip"})
		return
	}
	bookings, err := h.Svc.Bookings.ListByTrip(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}
