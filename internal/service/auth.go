package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/auth"
	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/storage"
)

var _ Authenticator = (*AuthService)(nil)

// AuthOptions configures registration.
type AuthOptions struct {
	// DefaultTenantID is stored on self-registered users. Nil leaves them tenantless.
	DefaultTenantID *uuid.UUID
	// RegistrationRoles lists the roles a caller may request when registering.
	RegistrationRoles []string
}

// AuthService implements Authenticator.
type AuthService struct {
	store   AuthStore
	hasher  Hasher
	tokens  *auth.TokenManager
	opts    AuthOptions
	log     *observability.Logger
	metrics *observability.Metrics
}

// NewAuthService wires the service. metrics may be nil.
func NewAuthService(store AuthStore, hasher Hasher, tokens *auth.TokenManager, opts AuthOptions, log *observability.Logger, metrics *observability.Metrics) *AuthService {
	if len(opts.RegistrationRoles) == 0 {
		opts.RegistrationRoles = []string{models.RoleAdmin, models.RoleManager, models.RoleUser}
	}
	return &AuthService{store: store, hasher: hasher, tokens: tokens, opts: opts, log: log, metrics: metrics}
}

// Register creates a user in the default tenant, grants the requested role and issues a token.
// The insert and the role grant are not atomic; a failure in between leaves a user without roles.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	const op = "auth.register"
	email := normalizeEmail(req.Email)
	roleName := req.Role
	if roleName == "" {
		roleName = models.DefaultRole
	}
	if !slices.Contains(s.opts.RegistrationRoles, roleName) {
		s.observe(ctx, "register", email, false, "role not allowed")
		return dto.AuthResponse{}, apperr.Validation("invalid request").
			WithDetails(map[string]string{"role": "must be one of " + strings.Join(s.opts.RegistrationRoles, ", ")})
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return dto.AuthResponse{}, internalErr(op, err)
	}

	user, err := s.store.CreateUser(ctx, models.User{
		TenantID:     s.opts.DefaultTenantID,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.observe(ctx, "register", email, false, "email exists")
			return dto.AuthResponse{}, apperr.Conflict("email already exists").WithOp(op)
		}
		return dto.AuthResponse{}, internalErr(op, err)
	}

	role, err := s.store.GetRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("role %q missing from catalog: %w", roleName, err)
		}
		return dto.AuthResponse{}, internalErr(op, err)
	}
	if _, err := s.store.AssignRole(ctx, user.ID, role.ID); err != nil {
		return dto.AuthResponse{}, internalErr(op, err)
	}

	resp, err := s.issue(ctx, op, user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	s.observe(ctx, "register", email, true, "")
	return resp, nil
}

// Login verifies credentials. An unknown email and a wrong password return the
// same error and both pay for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	const op = "auth.login"
	email := normalizeEmail(req.Email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return dto.AuthResponse{}, internalErr(op, err)
		}
		s.hasher.Verify(req.Password, s.hasher.DummyHash())
		s.observe(ctx, "login", email, false, "unknown email")
		return dto.AuthResponse{}, invalidCredentials()
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.observe(ctx, "login", email, false, "password mismatch")
		return dto.AuthResponse{}, invalidCredentials()
	}

	resp, err := s.issue(ctx, op, user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	s.observe(ctx, "login", email, true, "")
	return resp, nil
}

func (s *AuthService) issue(ctx context.Context, op string, user models.User) (dto.AuthResponse, error) {
	roles, err := s.store.ListRolesForUser(ctx, user.ID)
	if err != nil {
		return dto.AuthResponse{}, internalErr(op, err)
	}
	roles = nonNil(roles)
	token, err := s.tokens.Issue(user.ID, models.RoleNames(roles), user.TenantID)
	if err != nil {
		return dto.AuthResponse{}, internalErr(op, err)
	}
	return dto.AuthResponse{User: user, Token: token, Roles: roles}, nil
}

func (s *AuthService) observe(ctx context.Context, event, email string, success bool, reason string) {
	s.log.WithContext(ctx).AuthEvent(event, email, success, reason)
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	s.metrics.ObserveAuth(event, outcome)
}

func invalidCredentials() error {
	return apperr.Unauthorized("invalid credentials")
}
