package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/tenantauth/internal/auth"
	"github.com/hongminglow/tenantauth/internal/models/dto"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/storage/memory"
)

func TestTracedAuthRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	inner := NewAuthService(memory.New(), auth.NewPasswordHasher(bcrypt.MinCost),
		auth.NewTokenManager("s", "i", time.Hour), AuthOptions{}, observability.NopLogger(), nil)
	svc := NewTracedAuth(inner, tp)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "auth.Register", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	assert.Equal(t, "auth.Login", spans[1].Name())
	// Rejected credentials are an expected outcome, not a span error.
	assert.NotEqual(t, codes.Error, spans[1].Status().Code)
	var kind string
	for _, attr := range spans[1].Attributes() {
		if attr.Key == "error.kind" {
			kind = attr.Value.AsString()
		}
	}
	assert.Equal(t, "unauthorized", kind)
}

func TestTracedRolesPassThrough(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	svc := NewTracedRoles(NewRoleService(memory.New()), tp)

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "roles.List", spans[0].Name())
}
