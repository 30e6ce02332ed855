package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is used when the configured lifetime is not positive.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the JWT payload. TenantID serializes as null for users without a tenant.
type Claims struct {
	Roles    []string `json:"roles"`
	TenantID *string  `json:"tenant_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 JWTs.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenManager) { t.now = now }
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration, opts ...TokenOption) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	t := &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Issue signs a token for subject. Roles are embedded in the given order.
func (t *TokenManager) Issue(subject uuid.UUID, roles []string, tenantID *uuid.UUID) (string, error) {
	now := t.now()
	claims := Claims{
		Roles: append([]string{}, roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	if tenantID != nil {
		s := tenantID.String()
		claims.TenantID = &s
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns the identity it carries.
func (t *TokenManager) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	id := Identity{UserID: userID, Roles: claims.Roles}
	if claims.TenantID != nil {
		tenantID, err := uuid.Parse(*claims.TenantID)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: tenant: %v", ErrInvalidToken, err)
		}
		id.TenantID = &tenantID
	}
	return id, nil
}

// TTL is the lifetime applied to issued tokens.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}
