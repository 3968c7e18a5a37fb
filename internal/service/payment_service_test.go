package service

import (
	"context"
	"testing"
	"time"

	"drivehub/internal/apperr"
	"drivehub/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	*engineFixture
	payments *PaymentService
	gateway  *fakeGateway
}

func newPaymentFixture() *paymentFixture {
	f := newEngineFixture()
	gateway := &fakeGateway{url: "https://checkout.example.com/s/cs_test", sessionID: "cs_test"}
	users := newFakeUserRepo(
		db.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: db.RoleCustomer},
		db.User{ID: 2, Name: "Bob", Email: "bob@example.com", Role: db.RoleCustomer},
	)
	payments := NewPaymentService(f.bookings, users, f.svc, NewAccessPolicy(), gateway)
	return &paymentFixture{engineFixture: f, payments: payments, gateway: gateway}
}

func (f *paymentFixture) createWithMethod(t *testing.T, method db.PaymentMethod) *db.Booking {
	t.Helper()
	booking, err := f.svc.CreateBooking(context.Background(), customer, CreateBookingInput{
		VehicleID: 1, CustomerID: customer.UserID,
		StartDate: date(2025, time.January, 10), EndDate: date(2025, time.January, 13),
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return booking
}

func TestPayCashConfirmsImmediately(t *testing.T) {
	f := newPaymentFixture()
	booking := f.createWithMethod(t, db.PaymentCash)

	result, err := f.payments.Pay(context.Background(), customer, PaymentInput{
		BookingCode: booking.Code,
		AmountCents: booking.TotalCostCents,
	})
	require.NoError(t, err)

	assert.Equal(t, db.StatusConfirmed, result.Status)
	assert.Empty(t, result.CheckoutURL)
	assert.Zero(t, f.gateway.requested, "cash never hits the checkout gateway")

	stored, err := f.svc.GetBooking(context.Background(), customer, booking.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, stored.Status)
	assert.Equal(t, paymentSucceeded, stored.PaymentStatus)
}

func TestPayCardOpensCheckout(t *testing.T) {
	f := newPaymentFixture()
	booking := f.createWithMethod(t, db.PaymentCard)

	result, err := f.payments.Pay(context.Background(), customer, PaymentInput{
		BookingCode: booking.Code,
		AmountCents: booking.TotalCostCents,
	})
	require.NoError(t, err)

	// Card stays PENDING until the webhook reports the session as paid.
	assert.Equal(t, db.StatusPending, result.Status)
	assert.Equal(t, "https://checkout.example.com/s/cs_test", result.CheckoutURL)
	assert.Equal(t, booking.TotalCostCents, f.gateway.requested, "checkout charges the booking total")

	stored, err := f.bookings.GetByStripeSessionID(context.Background(), "cs_test")
	require.NoError(t, err)
	assert.Equal(t, booking.Code, stored.Code)
	assert.Equal(t, paymentPending, stored.PaymentStatus)
}

func TestPayAmountMismatch(t *testing.T) {
	f := newPaymentFixture()
	booking := f.createWithMethod(t, db.PaymentCash)

	_, err := f.payments.Pay(context.Background(), customer, PaymentInput{
		BookingCode: booking.Code,
		AmountCents: booking.TotalCostCents - 1,
	})

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestPayNonPendingBooking(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	booking := f.createWithMethod(t, db.PaymentCash)

	_, err := f.svc.Transition(ctx, customer, booking.Code, db.StatusCancelled)
	require.NoError(t, err)

	_, err = f.payments.Pay(ctx, customer, PaymentInput{
		BookingCode: booking.Code,
		AmountCents: booking.TotalCostCents,
	})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestPaySomeoneElsesBooking(t *testing.T) {
	f := newPaymentFixture()
	booking := f.createWithMethod(t, db.PaymentCash)

	_, err := f.payments.Pay(context.Background(), otherCustomer, PaymentInput{
		BookingCode: booking.Code,
		AmountCents: booking.TotalCostCents,
	})

	var authz *apperr.AuthorizationError
	require.ErrorAs(t, err, &authz)
}

func TestPayUnknownBooking(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.payments.Pay(context.Background(), customer, PaymentInput{
		BookingCode: "nope",
		AmountCents: 1000,
	})

	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
