package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedesk/coursedesk/internal/auth"
	"github.com/coursedesk/coursedesk/internal/shared"
	_ "github.com/coursedesk/coursedesk/testing"
)

type memoryAuthRepo struct {
	users    map[int64]*auth.User
	sessions map[string]time.Time
}

func newMemoryAuthRepo(users ...*auth.User) *memoryAuthRepo {
	repo := &memoryAuthRepo{
		users:    make(map[int64]*auth.User),
		sessions: make(map[string]time.Time),
	}
	for _, u := range users {
		copied := *u
		repo.users[u.ID] = &copied
	}
	return repo
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryAuthRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryAuthRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *memoryAuthRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = expiresAt
	return nil
}

func (r *memoryAuthRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *memoryAuthRepo) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	for id, expiresAt := range r.sessions {
		if expiresAt.Before(now) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "student@campus.test",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         shared.RoleStudent,
	})
	service := auth.NewService(repo)

	user, err := service.Authenticate(ctx, "student@campus.test", "correct horse")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)

	// Unknown email and wrong password fail with the same error, so the
	// response cannot be used to enumerate accounts.
	_, wrongPass := service.Authenticate(ctx, "student@campus.test", "nope")
	require.ErrorIs(t, wrongPass, shared.ErrInvalidCredentials)

	_, unknown := service.Authenticate(ctx, "ghost@campus.test", "nope")
	require.ErrorIs(t, unknown, shared.ErrInvalidCredentials)
	require.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "student@campus.test",
		PasswordHash: mustHash(t, "original-pass"),
	})
	service := auth.NewService(repo)

	err := service.ChangePassword(ctx, 1, "wrong-current", "replacement-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	err = service.ChangePassword(ctx, 1, "original-pass", "short")
	ve, ok := shared.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{"new_password"}, ve.Fields)

	require.NoError(t, service.ChangePassword(ctx, 1, "original-pass", "replacement-pass"))

	// The old credential must stop working once the new hash is stored.
	_, err = service.Authenticate(ctx, "student@campus.test", "original-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = service.Authenticate(ctx, "student@campus.test", "replacement-pass")
	require.NoError(t, err)
}

func TestChangePasswordExactMinimumLength(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAuthRepo(&auth.User{ID: 1, Email: "s@c.test", PasswordHash: mustHash(t, "original-pass")})
	service := auth.NewService(repo)

	require.NoError(t, service.ChangePassword(ctx, 1, "original-pass", "12345678"))
}

func TestPurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAuthRepo()
	service := auth.NewService(repo)

	require.NoError(t, service.RegisterSession(ctx, "live", 1, time.Now().Add(time.Hour), "", ""))
	require.NoError(t, service.RegisterSession(ctx, "stale", 1, time.Now().Add(-time.Hour), "", ""))

	purged, err := service.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)
	require.Contains(t, repo.sessions, "live")
	require.NotContains(t, repo.sessions, "stale")
}
