package users

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

type memoryUserRepo struct {
	byEmail map[string]*User
	loads   int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: make(map[string]*User)}
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.loads++
	user, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", httpx.ErrNotFound, email)
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) UpdateAvatar(ctx context.Context, email, url string) error {
	user, ok := r.byEmail[email]
	if !ok {
		return fmt.Errorf("%w: user %s", httpx.ErrNotFound, email)
	}
	user.Avatar = &url
	return nil
}

type fakeAvatarStore struct {
	uploads []string
}

func (s *fakeAvatarStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.uploads = append(s.uploads, key)
	return "https://cdn.example.com/" + key, nil
}

func newServiceUnderTest(t *testing.T) (*Service, *memoryUserRepo, *fakeAvatarStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryUserRepo()
	store := &fakeAvatarStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, store, NewCache(client, 15*time.Minute), logger)
	return svc, repo, store, mr
}

func TestMeCachesLookup(t *testing.T) {
	svc, repo, _, _ := newServiceUnderTest(t)
	repo.byEmail["alice@example.com"] = &User{ID: 1, Email: "alice@example.com", Role: RoleUser}

	first, err := svc.Me(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)

	_, err = svc.Me(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, repo.loads)
}

func TestMeUnknownUser(t *testing.T) {
	svc, _, _, _ := newServiceUnderTest(t)

	_, err := svc.Me(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateAvatarRequiresAdmin(t *testing.T) {
	svc, repo, store, _ := newServiceUnderTest(t)
	repo.byEmail["bob@example.com"] = &User{ID: 2, Email: "bob@example.com", Role: RoleUser}

	_, err := svc.UpdateAvatar(context.Background(), "bob@example.com", []byte("img"), "image/png")
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Empty(t, store.uploads)
}

func TestUpdateAvatarRejectsUnknownRole(t *testing.T) {
	svc, repo, _, _ := newServiceUnderTest(t)
	repo.byEmail["bob@example.com"] = &User{ID: 2, Email: "bob@example.com", Role: Role("superuser")}

	_, err := svc.UpdateAvatar(context.Background(), "bob@example.com", []byte("img"), "image/png")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateAvatarAdmin(t *testing.T) {
	svc, repo, store, mr := newServiceUnderTest(t)
	repo.byEmail["root@example.com"] = &User{ID: 5, Email: "root@example.com", Role: RoleAdmin}

	// Warm the cache first so the update provably invalidates it.
	_, err := svc.Me(context.Background(), "root@example.com")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:root@example.com"))

	updated, err := svc.UpdateAvatar(context.Background(), "root@example.com", []byte("img"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	require.Equal(t, "https://cdn.example.com/avatars/5", *updated.Avatar)
	require.Equal(t, []string{"avatars/5"}, store.uploads)

	stored := repo.byEmail["root@example.com"]
	require.NotNil(t, stored.Avatar)
	require.Equal(t, "https://cdn.example.com/avatars/5", *stored.Avatar)
	require.False(t, mr.Exists("user:root@example.com"))
}
