package handlers

import (
	"net/http"

	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/service"
)

// UserHandler serves the /users administration routes.
type UserHandler struct {
	svc      service.UserManager
	validate Validator
	log      *observability.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(svc service.UserManager, validate Validator, log *observability.Logger) *UserHandler {
	return &UserHandler{svc: svc, validate: validate, log: log}
}

// Register attaches the routes. Reads accept any built-in role, writes need Admin or Manager.
func (h *UserHandler) Register(mux *http.ServeMux, gate Gate) {
	read := gate(models.RoleAdmin, models.RoleManager, models.RoleUser)
	write := gate(models.RoleAdmin, models.RoleManager)

	mux.Handle("GET /users", read(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /users/{id}", read(http.HandlerFunc(h.handleGet)))
	mux.Handle("POST /users", write(http.HandlerFunc(h.handleCreate)))
	mux.Handle("PATCH /users/{id}", write(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /users/{id}", write(http.HandlerFunc(h.handleDelete)))
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), id, req)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.NoContent(w)
}
