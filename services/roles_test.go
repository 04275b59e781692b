package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/rpupo63/portfolio-backend/models"
)

type mockRoleStore struct {
	FindRoleFunc func(ctx context.Context, userID uuid.UUID) (string, error)
	calls        int
}

func (m *mockRoleStore) FindRole(ctx context.Context, userID uuid.UUID) (string, error) {
	m.calls++
	return m.FindRoleFunc(ctx, userID)
}

func TestResolveNilIdentitySkipsLookup(t *testing.T) {
	store := &mockRoleStore{
		FindRoleFunc: func(ctx context.Context, userID uuid.UUID) (string, error) {
			t.Error("role lookup should not run for an anonymous viewer")
			return "", nil
		},
	}
	resolver := NewRoleResolver(store)

	got := resolver.Resolve(context.Background(), nil)
	if got != PrivilegeNotAdmin {
		t.Errorf("Resolve(nil) = %v; want %v", got, PrivilegeNotAdmin)
	}
	if store.calls != 0 {
		t.Errorf("role store calls = %d; want 0", store.calls)
	}
}

func TestResolveAdminRole(t *testing.T) {
	id := uuid.New()
	store := &mockRoleStore{
		FindRoleFunc: func(ctx context.Context, userID uuid.UUID) (string, error) {
			if userID != id {
				t.Errorf("FindRole received userID = %v; want %v", userID, id)
			}
			return models.RoleAdmin, nil
		},
	}
	resolver := NewRoleResolver(store)

	got := resolver.Resolve(context.Background(), &Identity{UserID: id})
	if got != PrivilegeAdmin {
		t.Errorf("Resolve = %v; want %v", got, PrivilegeAdmin)
	}
}

func TestResolveMissingRow(t *testing.T) {
	store := &mockRoleStore{
		FindRoleFunc: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return "", nil
		},
	}
	resolver := NewRoleResolver(store)

	got := resolver.Resolve(context.Background(), &Identity{UserID: uuid.New()})
	if got != PrivilegeNotAdmin {
		t.Errorf("Resolve without role row = %v; want %v", got, PrivilegeNotAdmin)
	}
}

func TestResolveOtherRoleIsNotAdmin(t *testing.T) {
	store := &mockRoleStore{
		FindRoleFunc: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return "editor", nil
		},
	}
	resolver := NewRoleResolver(store)

	got := resolver.Resolve(context.Background(), &Identity{UserID: uuid.New()})
	if got != PrivilegeNotAdmin {
		t.Errorf("Resolve with non-admin role = %v; want %v", got, PrivilegeNotAdmin)
	}
}

func TestResolveFailsClosedOnError(t *testing.T) {
	store := &mockRoleStore{
		FindRoleFunc: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return "", errors.New("connection reset")
		},
	}
	resolver := NewRoleResolver(store)

	got := resolver.Resolve(context.Background(), &Identity{UserID: uuid.New()})
	if got != PrivilegeNotAdmin {
		t.Errorf("Resolve on lookup error = %v; want %v", got, PrivilegeNotAdmin)
	}
}

func TestPrivilegeIsAdmin(t *testing.T) {
	if PrivilegeUnknown.IsAdmin() {
		t.Error("unknown privilege must not count as admin")
	}
	if PrivilegeNotAdmin.IsAdmin() {
		t.Error("not_admin privilege must not count as admin")
	}
	if !PrivilegeAdmin.IsAdmin() {
		t.Error("admin privilege must count as admin")
	}
}
