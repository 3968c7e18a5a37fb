package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"drivehub/internal/apperr"
	"drivehub/internal/auth"
	"drivehub/internal/db"
	"drivehub/internal/repository"

	"github.com/google/uuid"
)

const paymentSucceeded = "succeeded"

// Notifier fans a booking status change out to the customer. Implementations
// must not block the request.
type Notifier interface {
	BookingStatusChanged(booking db.Booking, vehicle db.Vehicle, user db.User)
}

// Refunder reverses a completed card payment.
type Refunder interface {
	RefundBySessionID(sessionID string) error
}

type CreateBookingInput struct {
	VehicleID     int
	CustomerID    int
	StartDate     time.Time
	EndDate       time.Time
	PaymentMethod db.PaymentMethod
	Notes         string
}

// BookingService is the reservation engine: it validates date windows,
// detects overlapping bookings per vehicle, computes cost, and drives the
// status lifecycle.
type BookingService struct {
	bookings repository.BookingRepository
	vehicles repository.VehicleRepository
	users    repository.UserRepository
	policy   *AccessPolicy
	notifier Notifier
	refunder Refunder

	now func() time.Time
}

// NewBookingService wires the engine. notifier and refunder may be nil.
func NewBookingService(
	bookings repository.BookingRepository,
	vehicles repository.VehicleRepository,
	users repository.UserRepository,
	policy *AccessPolicy,
	notifier Notifier,
	refunder Refunder,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		vehicles: vehicles,
		users:    users,
		policy:   policy,
		notifier: notifier,
		refunder: refunder,
		now:      time.Now,
	}
}

// CreateBooking validates the request, computes the total cost from the
// vehicle's daily rate, and persists a PENDING booking. The overlap check
// and the insert run as one atomic unit against the store, so two
// overlapping requests for the same vehicle cannot both succeed. The
// vehicle's availability flag is untouched here; it only changes on the
// CONFIRMED transition.
//
// There is no dedup key: re-submitting identical arguments creates a new,
// independent booking.
func (s *BookingService) CreateBooking(ctx context.Context, actor auth.Actor, in CreateBookingInput) (*db.Booking, error) {
	if err := s.policy.Authorize(actor, OpCreateBooking, Resource{OwnerID: in.CustomerID}); err != nil {
		return nil, err
	}

	start := truncateToDate(in.StartDate)
	end := truncateToDate(in.EndDate)
	if !end.After(start) {
		return nil, apperr.Validation("end date must be after start date")
	}
	if start.Before(truncateToDate(s.now().UTC())) {
		return nil, apperr.Validation("start date cannot be in the past")
	}
	if in.PaymentMethod != db.PaymentCard && in.PaymentMethod != db.PaymentCash {
		return nil, apperr.Validation("unsupported payment method %q", in.PaymentMethod)
	}

	vehicle, err := s.vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}

	booking := &db.Booking{
		Code:           uuid.NewString(),
		VehicleID:      vehicle.ID,
		CustomerID:     in.CustomerID,
		StartDate:      start,
		EndDate:        end,
		PaymentMethod:  in.PaymentMethod,
		TotalCostCents: vehicle.DailyRateCents * int64(rentalDays(start, end)),
		Status:         db.StatusPending,
		Notes:          in.Notes,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	log.Printf("booking %s created for vehicle %d (%s to %s)",
		booking.Code, booking.VehicleID,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor auth.Actor, code string) (*db.Booking, error) {
	booking, err := s.bookings.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, OpViewBooking, Resource{OwnerID: booking.CustomerID}); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListAllBookings returns every booking, newest first. Admin only.
func (s *BookingService) ListAllBookings(ctx context.Context, actor auth.Actor) ([]db.Booking, error) {
	if err := s.policy.Authorize(actor, OpListAllBookings, Resource{}); err != nil {
		return nil, err
	}
	return s.bookings.ListAll(ctx)
}

// ListCustomerBookings returns a customer's bookings, newest first.
func (s *BookingService) ListCustomerBookings(ctx context.Context, actor auth.Actor, customerID int) ([]db.Booking, error) {
	if err := s.policy.Authorize(actor, OpViewBooking, Resource{OwnerID: customerID}); err != nil {
		return nil, err
	}
	return s.bookings.ListByCustomer(ctx, customerID)
}

// Transition moves a booking along the lifecycle graph. The status update is
// guarded on the expected current status, so concurrent transitions on one
// booking serialize and the loser fails. Cancelling a paid card booking
// refunds it once the update has won; the availability projection is
// recomputed afterwards.
func (s *BookingService) Transition(ctx context.Context, actor auth.Actor, code string, target db.BookingStatus) (*db.Booking, error) {
	if !db.ValidStatus(target) {
		return nil, apperr.Validation("unknown booking status %q", target)
	}

	booking, err := s.bookings.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, OpTransitionBooking, Resource{OwnerID: booking.CustomerID, Target: target}); err != nil {
		return nil, err
	}
	if !db.CanTransition(booking.Status, target) {
		return nil, apperr.InvalidTransition(string(booking.Status), string(target))
	}

	refundSession := ""
	if target == db.StatusCancelled && booking.PaymentStatus == paymentSucceeded && booking.StripeSessionID != "" {
		if s.refunder == nil {
			return nil, fmt.Errorf("booking %s is paid but no refunder is configured", booking.Code)
		}
		refundSession = booking.StripeSessionID
	}

	ok, err := s.bookings.UpdateStatus(ctx, booking.ID, booking.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race: the booking moved since we read it.
		return nil, apperr.InvalidTransition(string(booking.Status), string(target))
	}
	booking.Status = target

	// Refund only once the cancel has won the guarded update; a booking a
	// concurrent transition moved elsewhere must keep its payment. The cancel
	// is committed at this point, so a failed refund needs manual follow-up.
	if refundSession != "" {
		if err := s.refunder.RefundBySessionID(refundSession); err != nil {
			log.Printf("refund for cancelled booking %s (session %s) failed: %v", booking.Code, refundSession, err)
		}
	}

	s.refreshAvailability(ctx, booking.VehicleID)
	s.notifyStatusChange(ctx, booking)

	log.Printf("booking %s transitioned to %s", booking.Code, target)
	return booking, nil
}

// ConfirmPaid moves a PENDING booking to CONFIRMED after a successful
// payment. Payment success is the authority here, so no actor policy is
// consulted. A booking already confirmed is returned as-is, which keeps
// webhook retries harmless.
func (s *BookingService) ConfirmPaid(ctx context.Context, code, paymentStatus string) (*db.Booking, error) {
	booking, err := s.bookings.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if booking.Status == db.StatusConfirmed {
		return booking, nil
	}
	if !db.CanTransition(booking.Status, db.StatusConfirmed) {
		return nil, apperr.InvalidTransition(string(booking.Status), string(db.StatusConfirmed))
	}

	ok, err := s.bookings.UpdateStatus(ctx, booking.ID, booking.Status, db.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidTransition(string(booking.Status), string(db.StatusConfirmed))
	}
	booking.Status = db.StatusConfirmed

	if err := s.bookings.SetPaymentInfo(ctx, booking.ID, booking.StripeSessionID, paymentStatus); err != nil {
		log.Printf("could not record payment status for booking %s: %v", booking.Code, err)
	} else {
		booking.PaymentStatus = paymentStatus
	}

	s.refreshAvailability(ctx, booking.VehicleID)
	s.notifyStatusChange(ctx, booking)

	log.Printf("booking %s confirmed (payment %s)", booking.Code, paymentStatus)
	return booking, nil
}

// AttachPaymentSession records the Stripe checkout session opened for a
// booking so the webhook can find it later.
func (s *BookingService) AttachPaymentSession(ctx context.Context, bookingID int, sessionID, paymentStatus string) error {
	return s.bookings.SetPaymentInfo(ctx, bookingID, sessionID, paymentStatus)
}

func (s *BookingService) GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	return s.bookings.GetByStripeSessionID(ctx, sessionID)
}

// refreshAvailability recomputes the cached flag. Failures are logged, not
// surfaced: the projection self-heals on the next recompute.
func (s *BookingService) refreshAvailability(ctx context.Context, vehicleID int) {
	if err := s.vehicles.RefreshAvailability(ctx, vehicleID); err != nil {
		log.Printf("could not refresh availability for vehicle %d: %v", vehicleID, err)
	}
}

func (s *BookingService) notifyStatusChange(ctx context.Context, booking *db.Booking) {
	if s.notifier == nil {
		return
	}
	vehicle, err := s.vehicles.GetByID(ctx, booking.VehicleID)
	if err != nil {
		log.Printf("skipping notification for booking %s: %v", booking.Code, err)
		return
	}
	user, err := s.users.GetByID(ctx, booking.CustomerID)
	if err != nil {
		log.Printf("skipping notification for booking %s: %v", booking.Code, err)
		return
	}
	s.notifier.BookingStatusChanged(*booking, *vehicle, *user)
}

// rentalDays counts whole days in [start, end), rounding any partial day up.
func rentalDays(start, end time.Time) int {
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	if days == 0 {
		days = 1
	}
	return days
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
