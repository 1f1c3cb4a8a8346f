package google

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewStore(ctx, StoreOptions{
		Driver:         DriverRedis,
		Path:           "token.json",
		RedisAddr:      mr.Addr(),
		RedisKeyPrefix: "test:",
	})
	require.NoError(t, err)
	store := s.(*RedisStore)
	t.Cleanup(func() { _ = store.Close() })

	assert.Equal(t, "redis:test:token.json", store.Location())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	want := sampleCredential()
	require.NoError(t, store.Save(ctx, want))
	assert.True(t, mr.Exists("test:token.json"))
	assert.Zero(t, mr.TTL("test:token.json"))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Delete(ctx))
	assert.False(t, mr.Exists("test:token.json"))
	require.NoError(t, store.Delete(ctx))
}

func TestRedisStore_Corrupt(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(defaultRedisPrefix+"token.json", "not json"))

	store, err := NewRedisStore(context.Background(), RedisOptions{Addr: mr.Addr(), Path: "token.json"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorruptCredential)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr, Path: "token.json"})
	assert.Error(t, err)
}
