package service

import (
	"context"
	"log"
	"strings"

	"drivehub/internal/apperr"
	"drivehub/internal/auth"
	"drivehub/internal/db"
	"drivehub/internal/repository"
)

type VehicleInput struct {
	Category           db.VehicleCategory
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
}

// VehicleService owns the vehicle inventory. All mutations are
// administrator operations; reads are public.
type VehicleService struct {
	vehicles repository.VehicleRepository
	bookings repository.BookingRepository
	policy   *AccessPolicy
}

func NewVehicleService(vehicles repository.VehicleRepository, bookings repository.BookingRepository, policy *AccessPolicy) *VehicleService {
	return &VehicleService{vehicles: vehicles, bookings: bookings, policy: policy}
}

func (s *VehicleService) CreateVehicle(ctx context.Context, actor auth.Actor, in VehicleInput) (*db.Vehicle, error) {
	if err := s.policy.Authorize(actor, OpManageVehicles, Resource{}); err != nil {
		return nil, err
	}
	if err := validateVehicleInput(in); err != nil {
		return nil, err
	}

	vehicle := vehicleFromInput(in)
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	log.Printf("vehicle %d created: %s %s", vehicle.ID, vehicle.Brand, vehicle.Model)
	return vehicle, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, id int) (*db.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

func (s *VehicleService) ListVehicles(ctx context.Context, onlyAvailable bool) ([]db.Vehicle, error) {
	return s.vehicles.List(ctx, onlyAvailable)
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, actor auth.Actor, id int, in VehicleInput) (*db.Vehicle, error) {
	if err := s.policy.Authorize(actor, OpManageVehicles, Resource{}); err != nil {
		return nil, err
	}
	if err := validateVehicleInput(in); err != nil {
		return nil, err
	}

	vehicle := vehicleFromInput(in)
	vehicle.ID = id
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return s.vehicles.GetByID(ctx, id)
}

// DeleteVehicle removes a vehicle unless an active booking still
// references it.
func (s *VehicleService) DeleteVehicle(ctx context.Context, actor auth.Actor, id int) error {
	if err := s.policy.Authorize(actor, OpManageVehicles, Resource{}); err != nil {
		return err
	}

	active, err := s.bookings.HasActiveForVehicle(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return apperr.Conflict("vehicle %d has active bookings and cannot be deleted", id)
	}
	if err := s.vehicles.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("vehicle %d deleted", id)
	return nil
}

// SetAvailability force-sets the cached availability flag. The next
// projection recompute overrides it.
func (s *VehicleService) SetAvailability(ctx context.Context, actor auth.Actor, id int, available bool) (*db.Vehicle, error) {
	if err := s.policy.Authorize(actor, OpManageVehicles, Resource{}); err != nil {
		return nil, err
	}
	if err := s.vehicles.SetAvailability(ctx, id, available); err != nil {
		return nil, err
	}
	return s.vehicles.GetByID(ctx, id)
}

func validateVehicleInput(in VehicleInput) error {
	if !db.ValidCategory(in.Category) {
		return apperr.Validation("unknown vehicle category %q", in.Category)
	}
	if strings.TrimSpace(in.Brand) == "" || strings.TrimSpace(in.Model) == "" {
		return apperr.Validation("brand and model are required")
	}
	if in.DailyRateCents <= 0 {
		return apperr.Validation("daily rate must be positive")
	}
	return nil
}

func vehicleFromInput(in VehicleInput) *db.Vehicle {
	return &db.Vehicle{
		Category:           in.Category,
		Brand:              strings.TrimSpace(in.Brand),
		Model:              strings.TrimSpace(in.Model),
		DailyRateCents:     in.DailyRateCents,
		Available:          in.Available,
		RegistrationNumber: in.RegistrationNumber,
		YearOfManufacture:  in.YearOfManufacture,
		Description:        in.Description,
		Seats:              in.Seats,
		FuelType:           in.FuelType,
		Transmission:       in.Transmission,
	}
}
