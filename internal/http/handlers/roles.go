package handlers

import (
	"net/http"

	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/service"
)

// RoleHandler serves the role catalog, role assignments and the tenant list.
type RoleHandler struct {
	svc      service.RoleDirectory
	validate Validator
	log      *observability.Logger
}

// NewRoleHandler constructs the handler.
func NewRoleHandler(svc service.RoleDirectory, validate Validator, log *observability.Logger) *RoleHandler {
	return &RoleHandler{svc: svc, validate: validate, log: log}
}

// Register attaches the routes. Reads accept any built-in role; everything else needs Admin.
func (h *RoleHandler) Register(mux *http.ServeMux, gate Gate) {
	read := gate(models.RoleAdmin, models.RoleManager, models.RoleUser)
	admin := gate(models.RoleAdmin)

	mux.Handle("GET /roles", read(http.HandlerFunc(h.handleListRoles)))
	mux.Handle("POST /roles", admin(http.HandlerFunc(h.handleCreateRole)))
	mux.Handle("DELETE /roles/{name}", admin(http.HandlerFunc(h.handleDeleteRole)))

	mux.Handle("GET /users/{id}/roles", read(http.HandlerFunc(h.handleUserRoles)))
	mux.Handle("PUT /users/{id}/roles/{role}", admin(http.HandlerFunc(h.handleAssign)))
	mux.Handle("DELETE /users/{id}/roles/{role}", admin(http.HandlerFunc(h.handleUnassign)))

	mux.Handle("GET /tenants", admin(http.HandlerFunc(h.handleTenants)))
}

func (h *RoleHandler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListRoles(r.Context())
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(h.log, w, r, err)
		return
	}
	role, err := h.svc.CreateRole(r.Context(), req)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRole(r.Context(), r.PathValue("name")); err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *RoleHandler) handleUserRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	roles, err := h.svc.ListUserRoles(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	assignment, err := h.svc.AssignRole(r.Context(), id, r.PathValue("role"))
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, assignment)
}

func (h *RoleHandler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	if err := h.svc.UnassignRole(r.Context(), id, r.PathValue("role")); err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *RoleHandler) handleTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.ListTenants(r.Context())
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tenants)
}
