package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/config"
	"carpool/internal/domain"
	h "carpool/internal/http/handlers"
	"carpool/internal/http/middleware"
	"carpool/internal/services"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Env      config.Env
	DB       *sql.DB
	Users    domain.UserRepository
	TripSvc  services.TripService
	Bookings services.BookingService
	Admin    services.AdminService
	Sched    services.SchedulerService
	Docs     services.DocsService
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(d.Env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	system := h.SystemHandler{DB: d.DB}
	authH := h.AuthHandler{Users: d.Users, JWTSecret: d.Env.JWTSecret}
	tripH := h.TripHandler{Svc: d.TripSvc}
	bookingH := h.BookingHandler{Svc: d.Bookings, Docs: d.Docs}
	adminH := h.AdminHandler{Svc: d.Admin}
	jobsH := h.JobsHandler{Svc: d.Sched, Token: d.Env.JobToken}

	api := r.Group("/api")
	{
		api.GET("/health", system.Health)
		api.GET("/db-check", system.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/login", authH.Login)
		auth.POST("/register", authH.Register)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(d.Env.JWTSecret))
		{
			trips := authed.Group("/trips")
			trips.GET("/:id", tripH.Get)
			trips.GET("/:id/capacity", tripH.Capacity)
			trips.POST("/:id/bookings", middleware.RequireRoles("passenger", "admin"), bookingH.Create)

			driverTrips := trips.Group("")
			driverTrips.Use(middleware.RequireRoles("driver", "admin"))
			{
				driverTrips.POST("", tripH.Create)
				driverTrips.GET("", tripH.ListMine)
				driverTrips.PUT("/:id/publish", tripH.Publish)
				driverTrips.PUT("/:id/unpublish", tripH.Unpublish)
				driverTrips.POST("/:id/cancel", tripH.Cancel)
				driverTrips.GET("/:id/bookings", tripH.Bookings)
			}

			bookings := authed.Group("/bookings")
			bookings.GET("/:id", bookingH.Get)
			bookings.GET("/:id/e-ticket", bookingH.ETicket)
			bookings.POST("/:id/cancel", middleware.RequireRoles("passenger", "admin"), bookingH.Cancel)

			driverBookings := bookings.Group("")
			driverBookings.Use(middleware.RequireRoles("driver", "admin"))
			{
				driverBookings.PUT("/:id/accept", bookingH.Accept)
				driverBookings.PUT("/:id/decline", bookingH.Decline)
			}

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRoles("admin"))
			{
				admin.POST("/trips/:id/force-cancel", adminH.ForceCancelTrip)
				admin.PUT("/bookings/:id/correct-state", adminH.CorrectBookingState)
			}
		}

		jobs := api.Group("/jobs")
		jobs.POST("/auto-complete-trips", jobsH.AutoCompleteTrips)
		jobs.POST("/expire-pendings", jobsH.ExpirePendings)
	}

	return r
}
