package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("wrong horse", hash))
	assert.False(t, h.Verify("correct horse", "not-a-bcrypt-hash"))
}

func TestHashIgnoresBytesPastLimit(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	prefix := strings.Repeat("p", significantPasswordBytes)

	hash, err := h.Hash(prefix + "tail-one")
	require.NoError(t, err)

	assert.True(t, h.Verify(prefix+"tail-two", hash))
	assert.True(t, h.Verify(prefix, hash))
	assert.False(t, h.Verify(prefix[:significantPasswordBytes-1], hash))
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
	assert.Equal(t, 5, NewPasswordHasher(5).cost)
}

func TestDummyHashNeverMatches(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	dummy := h.DummyHash()
	require.NotEmpty(t, dummy)
	assert.Equal(t, dummy, h.DummyHash())
	assert.False(t, h.Verify("", dummy))
	assert.False(t, h.Verify("password", dummy))
}

func TestDummyHashBuiltAtConfiguredCost(t *testing.T) {
	h := NewPasswordHasher(5)
	require.NotEmpty(t, h.dummy, "built by the constructor")

	cost, err := bcrypt.Cost([]byte(h.DummyHash()))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "tenantauth", time.Hour)
	userID := uuid.New()
	tenantID := uuid.New()
	roles := []string{"Manager", "User", "Admin"}

	token, err := tm.Issue(userID, roles, &tenantID)
	require.NoError(t, err)

	id, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
	assert.Equal(t, roles, id.Roles)
	require.NotNil(t, id.TenantID)
	assert.Equal(t, tenantID, *id.TenantID)
}

func TestTokenWithoutTenant(t *testing.T) {
	tm := NewTokenManager("secret", "tenantauth", time.Hour)
	token, err := tm.Issue(uuid.New(), []string{"User"}, nil)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	v, present := claims["tenant_id"]
	assert.True(t, present)
	assert.Nil(t, v)

	id, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, id.TenantID)
}

func TestTokenDefaultTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", "tenantauth", 0, WithClock(func() time.Time { return now }))
	assert.Equal(t, 7*24*time.Hour, tm.TTL())

	token, err := tm.Issue(uuid.New(), nil, nil)
	require.NoError(t, err)
	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenExpired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issuedAt
	tm := NewTokenManager("secret", "tenantauth", time.Minute, WithClock(func() time.Time { return clock }))

	token, err := tm.Issue(uuid.New(), []string{"User"}, nil)
	require.NoError(t, err)

	clock = issuedAt.Add(59 * time.Second)
	_, err = tm.Verify(token)
	require.NoError(t, err)

	clock = issuedAt.Add(2 * time.Minute)
	_, err = tm.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenWrongKey(t *testing.T) {
	issuer := NewTokenManager("secret-a", "tenantauth", time.Hour)
	verifier := NewTokenManager("secret-b", "tenantauth", time.Hour)

	token, err := issuer.Issue(uuid.New(), []string{"Admin"}, nil)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	tm := NewTokenManager("secret", "tenantauth", time.Hour)
	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := tm.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestTokenRejectsNonUUIDSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "tenantauth", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasAnyRole(t *testing.T) {
	id := Identity{Roles: []string{"User", "Manager"}}
	assert.True(t, id.HasAnyRole("Admin", "Manager"))
	assert.False(t, id.HasAnyRole("Admin"))
	assert.False(t, id.HasAnyRole("manager"))
	assert.False(t, Identity{}.HasAnyRole("User"))
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: uuid.New(), Roles: []string{"User"}}
	got, ok := IdentityFrom(WithIdentity(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}
