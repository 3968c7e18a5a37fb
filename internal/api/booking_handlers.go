package api

import (
	"net/http"

	"drivehub/internal/auth"
	"drivehub/internal/db"
	"drivehub/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookings *service.BookingService
	payments *service.PaymentService
}

func NewBookingHandler(bookings *service.BookingService, payments *service.PaymentService) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), actor, service.CreateBookingInput{
		VehicleID:     req.VehicleID,
		CustomerID:    actor.UserID,
		StartDate:     start,
		EndDate:       end,
		PaymentMethod: db.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(*booking))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), actor, mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(*booking))
}

// ListMyBookings returns the caller's bookings, newest first.
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookings, err := h.bookings.ListCustomerBookings(r.Context(), actor, actor.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

// CancelBooking lets a customer cancel their own booking.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	booking, err := h.bookings.Transition(r.Context(), actor, mux.Vars(r)["code"], db.StatusCancelled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(*booking))
}

func (h *BookingHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req PaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.payments.Pay(r.Context(), actor, service.PaymentInput{
		BookingCode: req.BookingCode,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentResponse{
		BookingCode: result.BookingCode,
		Status:      string(result.Status),
		CheckoutURL: result.CheckoutURL,
		Message:     result.Message,
	})
}
