package service

import (
	"drivehub/internal/apperr"
	"drivehub/internal/auth"
	"drivehub/internal/db"
)

type Operation string

const (
	OpCreateBooking     Operation = "booking:create"
	OpViewBooking       Operation = "booking:view"
	OpListAllBookings   Operation = "booking:list_all"
	OpTransitionBooking Operation = "booking:transition"
	OpPayBooking        Operation = "booking:pay"
	OpManageVehicles    Operation = "vehicle:manage"
)

// Resource carries the attributes an authorization decision looks at.
type Resource struct {
	// OwnerID is the customer a booking belongs to; zero when not applicable.
	OwnerID int
	// Target is the requested status for transition operations.
	Target db.BookingStatus
}

// AccessPolicy decides which operations an actor may invoke. Authorize is
// pure and consulted before every mutating call.
type AccessPolicy struct{}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

func (p *AccessPolicy) Authorize(actor auth.Actor, op Operation, res Resource) error {
	if actor.Role == db.RoleAdmin {
		return nil
	}

	switch op {
	case OpCreateBooking:
		if res.OwnerID == actor.UserID {
			return nil
		}
		return apperr.Authorization("customers may only create bookings for themselves")
	case OpViewBooking, OpPayBooking:
		if res.OwnerID == actor.UserID {
			return nil
		}
		return apperr.Authorization("customers may only access their own bookings")
	case OpTransitionBooking:
		// Customers may cancel their own bookings; every other edge is
		// administrator territory.
		if res.OwnerID == actor.UserID && res.Target == db.StatusCancelled {
			return nil
		}
		return apperr.Authorization("customers may only cancel their own bookings")
	case OpListAllBookings:
		return apperr.Authorization("listing all bookings requires administrator role")
	case OpManageVehicles:
		return apperr.Authorization("vehicle management requires administrator role")
	}
	return apperr.Authorization("operation %q not permitted", op)
}
