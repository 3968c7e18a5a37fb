package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"drivehub/internal/api"
	"drivehub/internal/auth"
	"drivehub/internal/repository"
	"drivehub/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v78"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	policy := service.NewAccessPolicy()
	stripeSvc := service.NewStripeService()
	sender := service.NewSenderService()

	bookingSvc := service.NewBookingService(bookingRepo, vehicleRepo, userRepo, policy, sender, stripeSvc)
	vehicleSvc := service.NewVehicleService(vehicleRepo, bookingRepo, policy)
	authSvc := service.NewAuthService(userRepo, jwtSecret)
	paymentSvc := service.NewPaymentService(bookingRepo, userRepo, bookingSvc, policy, stripeSvc)
	jobSvc := service.NewJobService(jobRepo, vehicleRepo)

	authHandler := api.NewAuthHandler(authSvc)
	vehicleHandler := api.NewVehicleHandler(vehicleSvc)
	bookingHandler := api.NewBookingHandler(bookingSvc, paymentSvc)
	adminHandler := api.NewAdminHandler(bookingSvc, vehicleSvc)
	webhookHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), bookingSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/vehicles", vehicleHandler.ListVehicles).Methods("GET")
	r.HandleFunc("/api/vehicles/available", vehicleHandler.ListAvailableVehicles).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", vehicleHandler.GetVehicle).Methods("GET")
	r.HandleFunc("/api/stripe/webhook", webhookHandler.HandleWebhook).Methods("POST")

	// Authenticated endpoints
	user := r.PathPrefix("/api").Subrouter()
	user.Use(auth.Middleware(jwtSecret))
	user.HandleFunc("/bookings", bookingHandler.CreateBooking).Methods("POST")
	user.HandleFunc("/bookings/my", bookingHandler.ListMyBookings).Methods("GET")
	user.HandleFunc("/bookings/{code}", bookingHandler.GetBooking).Methods("GET")
	user.HandleFunc("/bookings/{code}", bookingHandler.CancelBooking).Methods("DELETE")
	user.HandleFunc("/payments", bookingHandler.Pay).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware(jwtSecret), auth.RequireAdmin)
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{code}/status", adminHandler.TransitionBooking).Methods("PATCH")
	admin.HandleFunc("/vehicles", adminHandler.CreateVehicle).Methods("POST")
	admin.HandleFunc("/vehicles/{id}", adminHandler.UpdateVehicle).Methods("PUT")
	admin.HandleFunc("/vehicles/{id}", adminHandler.DeleteVehicle).Methods("DELETE")
	admin.HandleFunc("/vehicles/{id}/availability", adminHandler.SetVehicleAvailability).Methods("PUT")

	// Hourly sweep: confirmed bookings past their end date become completed
	// and the availability projection catches up.
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := jobSvc.CompleteFinishedBookings(context.Background()); err != nil {
			log.Printf("booking sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule booking sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{os.Getenv("CORS_ORIGIN")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler(r)))
}
