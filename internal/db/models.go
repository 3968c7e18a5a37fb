package db

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

type VehicleCategory string

const (
	CategoryCar  VehicleCategory = "CAR"
	CategoryBike VehicleCategory = "BIKE"
	CategoryVan  VehicleCategory = "VAN"
)

func ValidCategory(c VehicleCategory) bool {
	switch c {
	case CategoryCar, CategoryBike, CategoryVan:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "CARD"
	PaymentCash PaymentMethod = "CASH"
)

type User struct {
	ID           int
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Vehicle is a single-table record for all categories; descriptive fields
// that do not apply to a category stay zero.
type Vehicle struct {
	ID                 int
	Category           VehicleCategory
	Brand              string
	Model              string
	DailyRateCents     int64
	Available          bool
	RegistrationNumber string
	YearOfManufacture  int
	Description        string
	Seats              int
	FuelType           string
	Transmission       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Booking struct {
	ID              int
	Code            string
	VehicleID       int
	CustomerID      int
	StartDate       time.Time
	EndDate         time.Time
	PaymentMethod   PaymentMethod
	TotalCostCents  int64
	Status          BookingStatus
	Notes           string
	StripeSessionID string
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Active reports whether the booking counts toward conflict checks and
// the availability projection.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Overlaps tests the half-open windows [b.StartDate, b.EndDate) and
// [start, end) for a shared day.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}
