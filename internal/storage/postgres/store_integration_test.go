package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/storage"
)

// TestStoreIntegration exercises the store against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}
	for _, path := range []string{".env", "../.env", "../../.env", "../../../.env"} {
		_ = godotenv.Overload(path)
	}
	dbURL := os.Getenv("DATABASE_URL")
	require.NotEmpty(t, dbURL, "DATABASE_URL is required")

	ctx := context.Background()
	store, err := NewStore(ctx, dbURL, observability.NopLogger())
	require.NoError(t, err)
	defer store.Close()

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	assert.Subset(t, models.RoleNames(roles), []string{"Admin", "Manager", "User"})

	tenant := storage.SeedTenantID
	email := fmt.Sprintf("it_%d@example.com", time.Now().UnixNano())
	user, err := store.CreateUser(ctx, models.User{Email: email, PasswordHash: "hash", TenantID: &tenant})
	require.NoError(t, err)
	defer func() { _ = store.DeleteUser(ctx, user.ID) }()

	_, err = store.CreateUser(ctx, models.User{Email: email, PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := store.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	cleared, err := store.UpdateUser(ctx, user.ID, storage.UserPatch{ClearTenant: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.TenantID)
	restored, err := store.UpdateUser(ctx, user.ID, storage.UserPatch{TenantID: &tenant})
	require.NoError(t, err)
	assert.Equal(t, &tenant, restored.TenantID)

	first, err := store.AssignRole(ctx, user.ID, storage.SeedUserRoleID)
	require.NoError(t, err)
	again, err := store.AssignRole(ctx, user.ID, storage.SeedUserRoleID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = store.AssignRole(ctx, user.ID, storage.SeedAdminRoleID)
	require.NoError(t, err)
	held, err := store.ListRolesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Admin"}, models.RoleNames(held))

	require.NoError(t, store.UnassignRole(ctx, user.ID, storage.SeedAdminRoleID))
	require.NoError(t, store.UnassignRole(ctx, user.ID, storage.SeedAdminRoleID))

	require.NoError(t, store.DeleteUser(ctx, user.ID))
	_, err = store.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	held, err = store.ListRolesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, held)
}
