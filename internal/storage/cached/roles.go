// Package cached decorates a storage.Store with an expiring cache of the role catalog.
package cached

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hongminglow/tenantauth/internal/models"
	"github.com/hongminglow/tenantauth/internal/storage"
)

const defaultCacheSize = 256

// Store caches role lookups by name. Everything else passes through.
// Assignments are never cached so role changes are visible to the next login.
type Store struct {
	storage.Store
	roles *lru.LRU[string, models.Role]
}

// New wraps inner. A non-positive ttl disables expiry.
func New(inner storage.Store, ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		Store: inner,
		roles: lru.NewLRU[string, models.Role](defaultCacheSize, nil, ttl),
	}
}

// GetRoleByName serves from cache, loading from the inner store on miss.
// Misses for unknown names are not cached.
func (s *Store) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	if role, ok := s.roles.Get(name); ok {
		return role, nil
	}
	role, err := s.Store.GetRoleByName(ctx, name)
	if err != nil {
		return models.Role{}, err
	}
	s.roles.Add(name, role)
	return role, nil
}

func (s *Store) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	created, err := s.Store.CreateRole(ctx, role)
	if err != nil {
		return models.Role{}, err
	}
	s.roles.Add(created.Name, created)
	return created, nil
}

// DeleteRole evicts every cached entry for id.
func (s *Store) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteRole(ctx, id); err != nil {
		return err
	}
	for _, name := range s.roles.Keys() {
		if role, ok := s.roles.Peek(name); ok && role.ID == id {
			s.roles.Remove(name)
		}
	}
	return nil
}
