package service

import (
	"context"
	"fmt"
	"log"

	"drivehub/internal/apperr"
	"drivehub/internal/auth"
	"drivehub/internal/db"
	"drivehub/internal/repository"
)

const paymentPending = "pending"

// CheckoutGateway opens a hosted payment page. Satisfied by StripeService.
type CheckoutGateway interface {
	CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (url, sessionID string, err error)
}

type PaymentInput struct {
	BookingCode string
	AmountCents int64
}

type PaymentResult struct {
	BookingCode string
	Status      db.BookingStatus
	// CheckoutURL is set for card payments: the booking confirms once the
	// checkout webhook reports success.
	CheckoutURL string
	Message     string
}

// PaymentService settles a PENDING booking. Cash is recorded on the spot and
// confirms immediately; card goes through Stripe Checkout and confirms via
// webhook.
type PaymentService struct {
	bookings repository.BookingRepository
	users    repository.UserRepository
	engine   *BookingService
	policy   *AccessPolicy
	gateway  CheckoutGateway
	currency string
}

func NewPaymentService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	engine *BookingService,
	policy *AccessPolicy,
	gateway CheckoutGateway,
) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		users:    users,
		engine:   engine,
		policy:   policy,
		gateway:  gateway,
		currency: "usd",
	}
}

func (s *PaymentService) Pay(ctx context.Context, actor auth.Actor, in PaymentInput) (*PaymentResult, error) {
	booking, err := s.bookings.GetByCode(ctx, in.BookingCode)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, OpPayBooking, Resource{OwnerID: booking.CustomerID}); err != nil {
		return nil, err
	}
	if booking.Status != db.StatusPending {
		return nil, apperr.Validation("booking %s is not in a payable state", booking.Code)
	}
	if in.AmountCents != booking.TotalCostCents {
		return nil, apperr.Validation("payment amount does not match booking total cost")
	}

	switch booking.PaymentMethod {
	case db.PaymentCash:
		confirmed, err := s.engine.ConfirmPaid(ctx, booking.Code, paymentSucceeded)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{
			BookingCode: confirmed.Code,
			Status:      confirmed.Status,
			Message:     fmt.Sprintf("cash payment of %d recorded, please collect your receipt at pickup", in.AmountCents),
		}, nil

	case db.PaymentCard:
		user, err := s.users.GetByID(ctx, booking.CustomerID)
		if err != nil {
			return nil, err
		}
		url, sessionID, err := s.gateway.CreateCheckoutSession(
			booking.TotalCostCents, s.currency,
			fmt.Sprintf("DriveHub booking %s", booking.Code), user.Email)
		if err != nil {
			return nil, err
		}
		if err := s.engine.AttachPaymentSession(ctx, booking.ID, sessionID, paymentPending); err != nil {
			return nil, err
		}
		log.Printf("checkout session %s opened for booking %s", sessionID, booking.Code)
		return &PaymentResult{
			BookingCode: booking.Code,
			Status:      booking.Status,
			CheckoutURL: url,
			Message:     "complete the card payment at the checkout URL",
		}, nil

	default:
		return nil, apperr.Validation("unsupported payment method %q", booking.PaymentMethod)
	}
}
