package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/storage"
)

const roleColumns = `id, name, description, created_at`

func (s *Store) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	const query = `INSERT INTO roles (id, name, description) VALUES ($1, $2, $3) RETURNING ` + roleColumns
	created, err := scanRole(s.pool.QueryRow(ctx, query, uuid.New(), role.Name, role.Description))
	return created, mapError(err)
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	role, err := scanRole(s.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	return role, mapError(err)
}

func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return collectRoles(rows)
}

// DeleteRole removes a role. Assignments are removed by ON DELETE CASCADE.
func (s *Store) DeleteRole(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AssignRole inserts the pair or returns the row that already holds it.
func (s *Store) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (models.UserRole, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO user_roles (id, user_id, role_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, role_id) DO NOTHING
			RETURNING id, user_id, role_id, created_at
		)
		SELECT id, user_id, role_id, created_at FROM inserted
		UNION ALL
		SELECT id, user_id, role_id, created_at FROM user_roles
		WHERE user_id = $2 AND role_id = $3
		LIMIT 1`

	// A concurrent insert committed after this statement's snapshot yields no
	// rows; the retry sees it.
	for attempt := 0; ; attempt++ {
		var ur models.UserRole
		err := s.pool.QueryRow(ctx, query, uuid.New(), userID, roleID).
			Scan(&ur.ID, &ur.UserID, &ur.RoleID, &ur.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) && attempt == 0 {
			continue
		}
		if err != nil {
			return models.UserRole{}, mapError(err)
		}
		return ur, nil
	}
}

// ListRolesForUser returns the user's roles in assignment order.
func (s *Store) ListRolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	const query = `
		SELECT r.id, r.name, r.description, r.created_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.created_at, ur.id`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles for user: %w", err)
	}
	return collectRoles(rows)
}

func (s *Store) UnassignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return mapError(err)
}

func (s *Store) UnassignAllRoles(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	return mapError(err)
}

func collectRoles(rows pgx.Rows) ([]models.Role, error) {
	defer rows.Close()
	roles := []models.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func scanRole(row pgx.Row) (models.Role, error) {
	var r models.Role
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt); err != nil {
		return models.Role{}, err
	}
	return r, nil
}
