// Package handlers exposes the auth, user, role and tenant services over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/observability"
)

const maxBodyBytes = 1 << 20

// Gate builds a role check passing callers that hold any of roles.
type Gate func(roles ...string) func(http.Handler) http.Handler

// Validator checks a decoded request body.
type Validator interface {
	Struct(s any) error
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON payload")
	}
	return nil
}

// fail logs internal faults with their cause before writing the sanitized response.
func fail(log *observability.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInternal, apperr.KindUnknown:
		log.WithContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}
	respond.Fail(w, err)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid request").WithDetails(map[string]string{name: "must be a valid UUID"})
	}
	return id, nil
}
