package handlers

import (
	"net/http"

	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/service"
)

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	svc      service.Authenticator
	validate Validator
	log      *observability.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc service.Authenticator, validate Validator, log *observability.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, validate: validate, log: log}
}

// Register attaches auth routes to the mux. limit wraps each route, typically
// with the per-IP rate limiter; nil leaves the routes unwrapped.
func (h *AuthHandler) Register(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	wrap := func(fn http.HandlerFunc) http.Handler {
		if limit == nil {
			return fn
		}
		return limit(fn)
	}
	mux.Handle("POST /auth/register", wrap(h.handleRegister))
	mux.Handle("POST /auth/login", wrap(h.handleLogin))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
