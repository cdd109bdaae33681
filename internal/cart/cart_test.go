package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zet-health/zet_booking/internal/logging"
	"github.com/zet-health/zet_booking/internal/storage"
)

func TestAddSameIDBumpsQuantity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory(), logging.Discard())

	_, err := s.Add(ctx, Item{ID: "cbc", Name: "Complete Blood Count", Price: 350})
	require.NoError(t, err)
	it, err := s.Add(ctx, Item{ID: "cbc", Name: "Complete Blood Count", Price: 350})
	require.NoError(t, err)
	assert.Equal(t, 2, it.Quantity)

	_, err = s.Add(ctx, Item{ID: "lipid", Name: "Lipid Profile", Price: 600})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "cbc", items[0].ID)
	assert.Equal(t, "lipid", items[1].ID)
	assert.Equal(t, 3, s.Count())
	assert.InDelta(t, 1300, s.Total(), 0.001)
}

func TestAddRejectsInvalidItems(t *testing.T) {
	s := NewStore(storage.NewMemory(), logging.Discard())
	_, err := s.Add(context.Background(), Item{Name: "no id"})
	require.ErrorIs(t, err, ErrMissingID)
	_, err = s.Add(context.Background(), Item{ID: "x", Price: -1})
	require.ErrorIs(t, err, ErrNegativePrice)
	assert.Empty(t, s.Items())
}

func TestRemoveAndClearPersist(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s := NewStore(st, logging.Discard())
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Add(ctx, Item{ID: id, Price: 10})
		require.NoError(t, err)
	}

	require.NoError(t, s.Remove(ctx, "b"))
	require.NoError(t, s.Remove(ctx, "missing"))

	reloaded := NewStore(st, logging.Discard())
	require.NoError(t, reloaded.Load(ctx))
	ids := []string{}
	for _, it := range reloaded.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	require.NoError(t, s.Clear(ctx))
	raw, err := st.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLoadCorruptCartIsEmpty(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	require.NoError(t, st.Set(ctx, storage.KeyCart, "not-json"))

	s := NewStore(st, logging.Discard())
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Items())
	assert.Zero(t, s.Total())
}

func TestLoadMergesLegacyDuplicates(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	require.NoError(t, st.Set(ctx, storage.KeyCart, `[{"id":"cbc","price":350},{"id":"cbc","price":350},{"id":"","price":1}]`))

	s := NewStore(st, logging.Discard())
	require.NoError(t, s.Load(ctx))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory(), logging.Discard())
	_, err := s.Add(ctx, Item{ID: "a", Metadata: map[string]string{"sample": "blood"}})
	require.NoError(t, err)

	items := s.Items()
	items[0].Metadata["sample"] = "urine"
	assert.Equal(t, "blood", s.Items()[0].Metadata["sample"])
}

func TestCartOnRedisStorage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st := storage.NewRedis(client, "zet:")
	s := NewStore(st, logging.Discard())
	_, err := s.Add(ctx, Item{ID: "thyroid", Price: 450})
	require.NoError(t, err)

	assert.True(t, mr.Exists("zet:cart"))

	reloaded := NewStore(st, logging.Discard())
	require.NoError(t, reloaded.Load(ctx))
	assert.InDelta(t, 450, reloaded.Total(), 0.001)
}

type flakyStorage struct {
	*storage.Memory
	fail bool
}

func (f *flakyStorage) Set(ctx context.Context, key, value string) error {
	if f.fail {
		return errors.New("storage down")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestFailedPersistLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	st := &flakyStorage{Memory: storage.NewMemory()}
	s := NewStore(st, logging.Discard())
	_, err := s.Add(ctx, Item{ID: "cbc", Price: 350})
	require.NoError(t, err)

	st.fail = true
	_, err = s.Add(ctx, Item{ID: "cbc", Price: 350})
	require.Error(t, err)
	_, err = s.Add(ctx, Item{ID: "lipid", Price: 600})
	require.Error(t, err)
	require.Error(t, s.Remove(ctx, "cbc"))
	require.Error(t, s.Clear(ctx))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.InDelta(t, 350, s.Total(), 0.001)

	st.fail = false
	reloaded := NewStore(st, logging.Discard())
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.Items(), reloaded.Items())
}
