package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	file, err := NewFile(filepath.Join(t.TempDir(), "nested", "storage.json"))
	require.NoError(t, err)

	return map[string]Storage{
		"memory": NewMemory(),
		"file":   file,
		"redis":  NewRedis(client, "test:"),
	}
}

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, KeyToken)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyToken, "T1"))
			require.NoError(t, s.Set(ctx, KeyUserMobile, "9876543210"))

			v, err := s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "T1", v)

			require.NoError(t, s.Delete(ctx, KeyToken, KeyUserMobile))
			_, err = s.Get(ctx, KeyToken)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Get(ctx, KeyUserMobile)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, s, KeyCart, payload{Name: "CBC"}))

	var got payload
	require.NoError(t, GetJSON(ctx, s, KeyCart, &got))
	assert.Equal(t, "CBC", got.Name)

	require.NoError(t, s.Set(ctx, KeyCart, "{broken"))
	assert.Error(t, GetJSON(ctx, s, KeyCart, &got))

	assert.ErrorIs(t, GetJSON(ctx, s, KeySelectedLocation, &got), ErrNotFound)
}

func TestFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyToken, "persisted"))

	second, err := NewFile(path)
	require.NoError(t, err)
	v, err := second.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRedisPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	a := NewRedis(client, "a:")
	b := NewRedis(client, "b:")
	require.NoError(t, a.Set(ctx, KeyToken, "A"))

	_, err := b.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, mr.Exists("a:token"))
}
