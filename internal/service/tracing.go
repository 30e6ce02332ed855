package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
)

const tracerName = "github.com/hongminglow/tenantauth/internal/service"

var (
	_ Authenticator = (*TracedAuth)(nil)
	_ UserManager   = (*TracedUsers)(nil)
	_ RoleDirectory = (*TracedRoles)(nil)
)

// The Traced* types wrap each operation of a service in a span. The wrapped
// service stays free of tracing code.

// TracedAuth traces an Authenticator.
type TracedAuth struct {
	next   Authenticator
	tracer trace.Tracer
}

// NewTracedAuth wraps next with spans from tp.
func NewTracedAuth(next Authenticator, tp trace.TracerProvider) *TracedAuth {
	return &TracedAuth{next: next, tracer: tp.Tracer(tracerName)}
}

func (t *TracedAuth) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	ctx, span := t.tracer.Start(ctx, "auth.Register")
	defer span.End()
	resp, err := t.next.Register(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String("user.id", resp.User.ID.String()))
	}
	return resp, finish(span, err)
}

func (t *TracedAuth) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	ctx, span := t.tracer.Start(ctx, "auth.Login")
	defer span.End()
	resp, err := t.next.Login(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String("user.id", resp.User.ID.String()))
	}
	return resp, finish(span, err)
}

// TracedUsers traces a UserManager.
type TracedUsers struct {
	next   UserManager
	tracer trace.Tracer
}

// NewTracedUsers wraps next with spans from tp.
func NewTracedUsers(next UserManager, tp trace.TracerProvider) *TracedUsers {
	return &TracedUsers{next: next, tracer: tp.Tracer(tracerName)}
}

func (t *TracedUsers) CreateUser(ctx context.Context, req dto.CreateUserRequest) (models.User, error) {
	ctx, span := t.tracer.Start(ctx, "users.Create")
	defer span.End()
	user, err := t.next.CreateUser(ctx, req)
	return user, finish(span, err)
}

func (t *TracedUsers) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, span := t.tracer.Start(ctx, "users.List")
	defer span.End()
	users, err := t.next.ListUsers(ctx)
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, finish(span, err)
}

func (t *TracedUsers) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	ctx, span := t.tracer.Start(ctx, "users.Get", trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()
	user, err := t.next.GetUser(ctx, id)
	return user, finish(span, err)
}

func (t *TracedUsers) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (models.User, error) {
	ctx, span := t.tracer.Start(ctx, "users.Update", trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()
	user, err := t.next.UpdateUser(ctx, id, req)
	return user, finish(span, err)
}

func (t *TracedUsers) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, span := t.tracer.Start(ctx, "users.Delete", trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()
	return finish(span, t.next.DeleteUser(ctx, id))
}

// RoleDirectory combines role administration with tenant reads.
type RoleDirectory interface {
	RoleManager
	TenantLister
}

// TracedRoles traces a RoleDirectory.
type TracedRoles struct {
	next   RoleDirectory
	tracer trace.Tracer
}

// NewTracedRoles wraps next with spans from tp.
func NewTracedRoles(next RoleDirectory, tp trace.TracerProvider) *TracedRoles {
	return &TracedRoles{next: next, tracer: tp.Tracer(tracerName)}
}

func (t *TracedRoles) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx, span := t.tracer.Start(ctx, "roles.List")
	defer span.End()
	roles, err := t.next.ListRoles(ctx)
	return roles, finish(span, err)
}

func (t *TracedRoles) CreateRole(ctx context.Context, req dto.CreateRoleRequest) (models.Role, error) {
	ctx, span := t.tracer.Start(ctx, "roles.Create", trace.WithAttributes(attribute.String("role.name", req.Name)))
	defer span.End()
	role, err := t.next.CreateRole(ctx, req)
	return role, finish(span, err)
}

func (t *TracedRoles) DeleteRole(ctx context.Context, name string) error {
	ctx, span := t.tracer.Start(ctx, "roles.Delete", trace.WithAttributes(attribute.String("role.name", name)))
	defer span.End()
	return finish(span, t.next.DeleteRole(ctx, name))
}

func (t *TracedRoles) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	ctx, span := t.tracer.Start(ctx, "roles.ListForUser", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()
	roles, err := t.next.ListUserRoles(ctx, userID)
	return roles, finish(span, err)
}

func (t *TracedRoles) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) (models.UserRole, error) {
	ctx, span := t.tracer.Start(ctx, "roles.Assign", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("role.name", roleName),
	))
	defer span.End()
	ur, err := t.next.AssignRole(ctx, userID, roleName)
	return ur, finish(span, err)
}

func (t *TracedRoles) UnassignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	ctx, span := t.tracer.Start(ctx, "roles.Unassign", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("role.name", roleName),
	))
	defer span.End()
	return finish(span, t.next.UnassignRole(ctx, userID, roleName))
}

func (t *TracedRoles) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	ctx, span := t.tracer.Start(ctx, "tenants.List")
	defer span.End()
	tenants, err := t.next.ListTenants(ctx)
	return tenants, finish(span, err)
}

// finish records err on span and returns it unchanged.
func finish(span trace.Span, err error) error {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return nil
	}
	kind := apperr.KindOf(err)
	span.SetAttributes(attribute.String("error.kind", kind.String()))
	// Expected client errors are not span failures.
	if kind == apperr.KindInternal || kind == apperr.KindUnknown {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
