package api

import (
	"net/http"
	"strconv"

	"drivehub/internal/apperr"
	"drivehub/internal/service"

	"github.com/gorilla/mux"
)

// VehicleHandler serves the public, read-only vehicle endpoints.
type VehicleHandler struct {
	vehicles *service.VehicleService
}

func NewVehicleHandler(vehicles *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.ListVehicles(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponses(vehicles))
}

func (h *VehicleHandler) ListAvailableVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.ListVehicles(r.Context(), true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponses(vehicles))
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	vehicle, err := h.vehicles.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(*vehicle))
}

func vehicleID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, apperr.Validation("vehicle id must be an integer")
	}
	return id, nil
}
