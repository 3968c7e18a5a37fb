package service

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/refund"
)

// StripeService wraps the Stripe Checkout and refund calls the booking flow
// needs.
type StripeService struct {
	successURL string
	cancelURL  string
}

func NewStripeService() *StripeService {
	return &StripeService{
		successURL: os.Getenv("STRIPE_SUCCESS_URL"),
		cancelURL:  os.Getenv("STRIPE_CANCEL_URL"),
	}
}

// CreateCheckoutSession opens a hosted checkout page for the booking amount
// and returns its URL and session ID.
func (s *StripeService) CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.successURL),
		CancelURL:     stripe.String(s.cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, sess.ID, nil
}

// RefundBySessionID refunds the payment behind a completed checkout session.
func (s *StripeService) RefundBySessionID(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("get checkout session %s: %w", sessionID, err)
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no payment intent found for session %s", sessionID)
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	_, err = refund.New(params)
	if err != nil {
		return fmt.Errorf("refund payment intent %s: %w", sess.PaymentIntent.ID, err)
	}
	return nil
}
