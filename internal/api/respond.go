package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"drivehub/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an opaque internal failure.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		conflict   *apperr.ConflictError
		transition *apperr.InvalidTransitionError
		authz      *apperr.AuthorizationError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Msg})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": conflict.Msg})
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": transition.Error()})
	case errors.As(err, &authz):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": authz.Msg})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// decodeAndValidate decodes the JSON body into dst and runs the struct
// validation tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Validation("invalid request: %v", err)
	}
	return nil
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be an ISO date (YYYY-MM-DD)", field)
	}
	return t, nil
}
