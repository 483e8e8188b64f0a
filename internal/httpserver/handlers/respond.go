package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/form"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	"github.com/MrSnakeDoc/reelmark/internal/thumbnail"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

// errorStatus maps domain errors to HTTP statuses.
func errorStatus(err error) int {
	var saveErr *collection.SaveError
	switch {
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &saveErr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, form.ErrSubmitting), errors.Is(err, form.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, form.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, thumbnail.ErrNotImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, thumbnail.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status errorStatus picks. Server errors are logged.
func fail(w http.ResponseWriter, log logger.Logger, err error) {
	status := errorStatus(err)
	msg, field := err.Error(), ""
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		msg, field = verr.Message, verr.Field
	}
	if status >= http.StatusInternalServerError {
		log.Warn("request failed", logger.Int("status", status), logger.Error(err))
	}
	writeError(w, status, msg, field)
}

// maxJSONBody leaves room for an inline data URL thumbnail.
const maxJSONBody = 4 << 20

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeLimit(w, r, v, maxJSONBody)
}

func decodeLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
