package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUserRequestTenantPresence(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		set   bool
		value *string
	}{
		{"absent", `{"email":"a@x.io"}`, false, nil},
		{"null", `{"tenant_id":null}`, true, nil},
		{"value", `{"tenant_id":"abc"}`, true, ptr("abc")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateUserRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.set, req.TenantID.Set)
			assert.Equal(t, tc.value, req.TenantID.Value)
		})
	}
}

func TestUpdateUserRequestNullTenantIsNotEmpty(t *testing.T) {
	var req UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"tenant_id":null}`), &req))
	assert.False(t, req.Empty())
	assert.True(t, req.TenantID.Null())

	require.Error(t, json.Unmarshal([]byte(`{"tenant_id":7}`), &req))
}

func ptr(s string) *string { return &s }
