package api

import (
	"time"

	"drivehub/internal/db"
)

const dateFormat = "2006-01-02"

// Auth

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=CUSTOMER ADMIN"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Bookings

type CreateBookingRequest struct {
	VehicleID     int    `json:"vehicle_id" validate:"required,gt=0"`
	StartDate     string `json:"start_date" validate:"required"`
	EndDate       string `json:"end_date" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=CARD CASH"`
	Notes         string `json:"notes" validate:"max=500"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type BookingResponse struct {
	Code           string `json:"code"`
	VehicleID      int    `json:"vehicle_id"`
	CustomerID     int    `json:"customer_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	PaymentMethod  string `json:"payment_method"`
	TotalCostCents int64  `json:"total_cost_cents"`
	Status         string `json:"status"`
	Notes          string `json:"notes,omitempty"`
	PaymentStatus  string `json:"payment_status,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toBookingResponse(b db.Booking) BookingResponse {
	return BookingResponse{
		Code:           b.Code,
		VehicleID:      b.VehicleID,
		CustomerID:     b.CustomerID,
		StartDate:      b.StartDate.Format(dateFormat),
		EndDate:        b.EndDate.Format(dateFormat),
		PaymentMethod:  string(b.PaymentMethod),
		TotalCostCents: b.TotalCostCents,
		Status:         string(b.Status),
		Notes:          b.Notes,
		PaymentStatus:  b.PaymentStatus,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
}

func toBookingResponses(bookings []db.Booking) []BookingResponse {
	responses := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, toBookingResponse(b))
	}
	return responses
}

// Payments

type PaymentRequest struct {
	BookingCode string `json:"booking_code" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

type PaymentResponse struct {
	BookingCode string `json:"booking_code"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Message     string `json:"message"`
}

// Vehicles

type VehicleRequest struct {
	Category           string `json:"category" validate:"required,oneof=CAR BIKE VAN"`
	Brand              string `json:"brand" validate:"required"`
	Model              string `json:"model" validate:"required"`
	DailyRateCents     int64  `json:"daily_rate_cents" validate:"required,gt=0"`
	Available          bool   `json:"available"`
	RegistrationNumber string `json:"registration_number"`
	YearOfManufacture  int    `json:"year_of_manufacture"`
	Description        string `json:"description" validate:"max=500"`
	Seats              int    `json:"seats"`
	FuelType           string `json:"fuel_type"`
	Transmission       string `json:"transmission"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type VehicleResponse struct {
	ID                 int    `json:"id"`
	Category           string `json:"category"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	DailyRateCents     int64  `json:"daily_rate_cents"`
	Available          bool   `json:"available"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	YearOfManufacture  int    `json:"year_of_manufacture,omitempty"`
	Description        string `json:"description,omitempty"`
	Seats              int    `json:"seats,omitempty"`
	FuelType           string `json:"fuel_type,omitempty"`
	Transmission       string `json:"transmission,omitempty"`
}

func toVehicleResponse(v db.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                 v.ID,
		Category:           string(v.Category),
		Brand:              v.Brand,
		Model:              v.Model,
		DailyRateCents:     v.DailyRateCents,
		Available:          v.Available,
		RegistrationNumber: v.RegistrationNumber,
		YearOfManufacture:  v.YearOfManufacture,
		Description:        v.Description,
		Seats:              v.Seats,
		FuelType:           v.FuelType,
		Transmission:       v.Transmission,
	}
}

func toVehicleResponses(vehicles []db.Vehicle) []VehicleResponse {
	responses := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, toVehicleResponse(v))
	}
	return responses
}
