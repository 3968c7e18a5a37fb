package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"drivehub/internal/service"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

const paymentSucceeded = "succeeded"

// StripeWebhookHandler confirms bookings when Stripe reports a completed
// checkout.
type StripeWebhookHandler struct {
	webhookSecret string
	bookings      *service.BookingService
}

func NewStripeWebhookHandler(webhookSecret string, bookings *service.BookingService) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhookSecret: webhookSecret, bookings: bookings}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("error reading webhook body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Printf("no session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		booking, err := h.bookings.GetBookingBySessionID(r.Context(), sess.ID)
		if err != nil {
			log.Printf("no booking for session %s: %v", sess.ID, err)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if _, err := h.bookings.ConfirmPaid(r.Context(), booking.Code, paymentSucceeded); err != nil {
			log.Printf("could not confirm booking %s: %v", booking.Code, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	default:
		log.Printf("unhandled stripe event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
