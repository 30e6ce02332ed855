package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
		KindUnknown:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x").HTTPStatus(), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := Conflict("email already exists")
	wrapped := fmt.Errorf("create user: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to list users", cause).WithOp("users.list")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "users.list: failed to list users: connection reset", err.Error())
	assert.Equal(t, "users.get: user not found", NotFound("user not found").WithOp("users.get").Error())
}
