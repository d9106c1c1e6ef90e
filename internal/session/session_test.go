package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecommerce/internal/repo"
	"github.com/Skotchmaster/ecommerce/internal/testutil"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func stores(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"gorm":  NewGormStore(repo.New(testutil.InitTestDB(t))),
		"redis": rs,
	}
}

func TestStores_SaveResolveRevoke(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, "abc", 42, time.Now().Add(time.Hour)))

			userID, ok, err := store.Resolve(ctx, "abc")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, uint(42), userID)

			_, ok, err = store.Resolve(ctx, "missing")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Revoke(ctx, "abc"))
			_, ok, err = store.Resolve(ctx, "abc")
			require.NoError(t, err)
			require.False(t, ok)

			require.ErrorIs(t, store.Revoke(ctx, "abc"), ErrNoSession)
		})
	}
}

func TestGormStore_Expired(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(repo.New(testutil.InitTestDB(t)))

	now := time.Now()
	require.NoError(t, store.Save(ctx, "abc", 1, now.Add(time.Minute)))

	store.Now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, err := store.Resolve(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStore_Expired(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Save(ctx, "abc", 1, time.Now().Add(time.Minute)))
	require.True(t, mr.Exists("session:abc"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := store.Resolve(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, store.Save(ctx, "late", 1, time.Now().Add(-time.Second)))
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			m := NewManager(store, []byte("secret"), time.Hour)

			token, exp, err := m.Issue(ctx, 5)
			require.NoError(t, err)
			require.NotEmpty(t, token)
			require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

			userID, ok, err := m.Resolve(ctx, token)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, uint(5), userID)

			other := NewManager(store, []byte("other"), time.Hour)
			_, ok, err = other.Resolve(ctx, token)
			require.NoError(t, err)
			require.False(t, ok)

			_, ok, err = m.Resolve(ctx, "not-a-token")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, m.Revoke(ctx, token))
			_, ok, err = m.Resolve(ctx, token)
			require.NoError(t, err)
			require.False(t, ok)

			require.ErrorIs(t, m.Revoke(ctx, "garbage"), ErrInvalidToken)
		})
	}
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(repo.New(testutil.InitTestDB(t)))
	m := NewManager(store, []byte("secret"), time.Minute)

	token, _, err := m.Issue(ctx, 1)
	require.NoError(t, err)

	m.Now = func() time.Time { return time.Now().Add(time.Hour) }
	_, ok, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManager_RejectsMismatchedSubject(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(repo.New(testutil.InitTestDB(t)))
	m := NewManager(store, []byte("secret"), time.Hour)

	require.NoError(t, store.Save(ctx, "jti-1", 1, time.Now().Add(time.Hour)))

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "2",
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, ok, err := m.Resolve(ctx, forged)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGormStore_Purge(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(repo.New(testutil.InitTestDB(t)))

	now := time.Now()
	require.NoError(t, store.Save(ctx, "live", 1, now.Add(time.Hour)))
	require.NoError(t, store.Save(ctx, "dead", 1, now.Add(time.Minute)))
	require.NoError(t, store.Save(ctx, "gone", 1, now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "gone"))

	store.Now = func() time.Time { return now.Add(2 * time.Minute) }
	n, err := store.Purge(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	_, ok, err := store.Resolve(ctx, "live")
	require.NoError(t, err)
	require.True(t, ok)
}
