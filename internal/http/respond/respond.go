package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/tenantauth/internal/apperr"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", slog.String("error", err.Error()))
	}
}

// Error writes an error response with a message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail renders err by its apperr kind. Internal and unclassified errors become
// a generic 500 so no storage or library detail reaches the client.
func Fail(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.KindInternal || e.Kind == apperr.KindUnknown {
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	JSON(w, e.HTTPStatus(), ErrorBody{Error: e.Message, Details: e.Details})
}
