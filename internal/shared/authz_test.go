package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequireAuthenticated(t *testing.T) {
	_, err := RequireAuthenticated(nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	p, err := RequireAuthenticated(&Principal{ID: 7, Role: RoleStudent})
	require.NoError(t, err)
	require.Equal(t, int64(7), p.ID)
}

func TestRequireAdmin(t *testing.T) {
	_, err := RequireAdmin(nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = RequireAdmin(&Principal{ID: 1, Role: RoleStudent})
	require.ErrorIs(t, err, ErrForbidden)

	p, err := RequireAdmin(&Principal{ID: 2, Role: RoleAdmin})
	require.NoError(t, err)
	require.True(t, p.IsAdmin())
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	require.ErrorIs(t, RequireOwnerOrAdmin(3, nil), ErrUnauthorized)

	owner := &Principal{ID: 3, Role: RoleStudent}
	require.NoError(t, RequireOwnerOrAdmin(3, owner))

	admin := &Principal{ID: 9, Role: RoleAdmin}
	require.NoError(t, RequireOwnerOrAdmin(3, admin))

	other := &Principal{ID: 4, Role: RoleStudent}
	require.ErrorIs(t, RequireOwnerOrAdmin(3, other), ErrForbidden)
}
