package api

import (
	"net/http"

	"drivehub/internal/auth"
	"drivehub/internal/db"
	"drivehub/internal/service"

	"github.com/gorilla/mux"
)

// AdminHandler serves the administrator endpoints: full booking visibility,
// lifecycle transitions, and vehicle inventory management. The router mounts
// it behind the admin middleware; the access policy checks again inside the
// services.
type AdminHandler struct {
	bookings *service.BookingService
	vehicles *service.VehicleService
}

func NewAdminHandler(bookings *service.BookingService, vehicles *service.VehicleService) *AdminHandler {
	return &AdminHandler{bookings: bookings, vehicles: vehicles}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookings, err := h.bookings.ListAllBookings(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

func (h *AdminHandler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req TransitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookings.Transition(r.Context(), actor, mux.Vars(r)["code"], db.BookingStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(*booking))
}

func (h *AdminHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req VehicleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vehicle, err := h.vehicles.CreateVehicle(r.Context(), actor, vehicleInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVehicleResponse(*vehicle))
}

func (h *AdminHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req VehicleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vehicle, err := h.vehicles.UpdateVehicle(r.Context(), actor, id, vehicleInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(*vehicle))
}

func (h *AdminHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.vehicles.DeleteVehicle(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

func (h *AdminHandler) SetVehicleAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req AvailabilityRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vehicle, err := h.vehicles.SetAvailability(r.Context(), actor, id, *req.Available)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(*vehicle))
}

func vehicleInput(req VehicleRequest) service.VehicleInput {
	return service.VehicleInput{
		Category:           db.VehicleCategory(req.Category),
		Brand:              req.Brand,
		Model:              req.Model,
		DailyRateCents:     req.DailyRateCents,
		Available:          req.Available,
		RegistrationNumber: req.RegistrationNumber,
		YearOfManufacture:  req.YearOfManufacture,
		Description:        req.Description,
		Seats:              req.Seats,
		FuelType:           req.FuelType,
		Transmission:       req.Transmission,
	}
}
