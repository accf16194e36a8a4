package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"carpool/internal/audit"
	"carpool/internal/config"
	"carpool/internal/domain"
	api "carpool/internal/http"
	"carpool/internal/notify"
	"carpool/internal/repositories"
	"carpool/internal/services"
)

func main() {
	_ = godotenv.Load()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Gagal baca konfigurasi: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := config.Connect(env)
	if err != nil {
		log.Fatalf("Gagal konek database: %v", err)
	}
	defer db.Close()

	if err := repositories.EnsureSchema(db); err != nil {
		log.Fatalf("Gagal siapkan schema: %v", err)
	}

	var notifier domain.Notifier = notify.LogNotifier{}
	if env.AMQPURL != "" {
		pub, err := notify.NewAMQPNotifier(env.AMQPURL, env.NotifyExchange)
		if err != nil {
			log.Fatalf("Gagal konek rabbitmq: %v", err)
		}
		defer pub.Close()
		notifier = pub
	}

	tripRepo := repositories.TripOfferRepository{DB: db}
	bookingRepo := repositories.BookingRequestRepository{DB: db}
	ledgerRepo := repositories.SeatLedgerRepository{DB: db}
	userRepo := repositories.UserRepository{DB: db}

	tripSvc := services.TripService{
		Trips:    tripRepo,
		Bookings: bookingRepo,
		Ledger:   ledgerRepo,
		Notify:   notifier,
	}
	bookingSvc := services.BookingService{
		Trips:    tripRepo,
		Bookings: bookingRepo,
		Ledger:   ledgerRepo,
		Notify:   notifier,
	}
	adminSvc := services.AdminService{
		TripSvc:  tripSvc,
		Trips:    tripRepo,
		Bookings: bookingRepo,
		Ledger:   ledgerRepo,
		Audit:    audit.LogRecorder{},
		Notify:   notifier,
	}
	schedSvc := services.SchedulerService{
		Trips:      tripRepo,
		Bookings:   bookingRepo,
		DefaultTTL: env.PendingTTLHours,
	}
	docsSvc := services.DocsService{
		Trips:    tripRepo,
		Bookings: bookingRepo,
		Users:    userRepo,
	}

	r := api.NewRouter(api.Deps{
		Env:      env,
		DB:       db,
		Users:    userRepo,
		TripSvc:  tripSvc,
		Bookings: bookingSvc,
		Admin:    adminSvc,
		Sched:    schedSvc,
		Docs:     docsSvc,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Mematikan server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown server gagal: %v", err)
	}

	log.Println("Server berhenti dengan aman.")
}
