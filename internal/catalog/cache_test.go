package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/shared"
)

type countingCatalog struct {
	memoryCatalog
	codeCalls int
	nameCalls int
}

func (c *countingCatalog) GetByCode(ctx context.Context, code string) (Item, error) {
	c.codeCalls++
	return c.memoryCatalog.GetByCode(ctx, code)
}

func (c *countingCatalog) ListByName(ctx context.Context, normalizedName string) ([]Item, error) {
	c.nameCalls++
	return c.memoryCatalog.ListByName(ctx, normalizedName)
}

func newCacheFixture(t *testing.T) (*countingCatalog, *CachedRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingCatalog{memoryCatalog: memoryCatalog{items: []Item{
		{ID: 1, Code: "MS-ROD-8", Name: "MS Rod 8mm", MaterialType: "Raw Material", Unit: "kg"},
	}}}
	return inner, NewCachedRepository(inner, client, time.Minute), mr
}

func TestCachedGetByCodeHitsRepositoryOnce(t *testing.T) {
	inner, cached, _ := newCacheFixture(t)
	ctx := context.Background()

	first, err := cached.GetByCode(ctx, "MS-ROD-8")
	require.NoError(t, err)
	second, err := cached.GetByCode(ctx, "MS-ROD-8")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, "MS Rod 8mm", second.Name)
	require.Equal(t, 1, inner.codeCalls)
}

func TestCachedListByNameHitsRepositoryOnce(t *testing.T) {
	inner, cached, _ := newCacheFixture(t)
	ctx := context.Background()

	items, err := cached.ListByName(ctx, Normalize("MS Rod 8mm"))
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = cached.ListByName(ctx, Normalize("MS Rod 8mm"))
	require.NoError(t, err)
	require.Equal(t, 1, inner.nameCalls)
}

func TestCachedGetByCodeDoesNotCacheMisses(t *testing.T) {
	inner, cached, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.GetByCode(ctx, "NO-SUCH")
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = cached.GetByCode(ctx, "NO-SUCH")
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Equal(t, 2, inner.codeCalls)
}

func TestCachedDegradesToDirectLookupWhenRedisDown(t *testing.T) {
	inner, cached, mr := newCacheFixture(t)
	ctx := context.Background()
	mr.Close()

	item, err := cached.GetByCode(ctx, "MS-ROD-8")
	require.NoError(t, err)
	require.Equal(t, "MS-ROD-8", item.Code)
	require.Equal(t, 1, inner.codeCalls)
}

func TestInvalidateDropsCachedEntries(t *testing.T) {
	inner, cached, _ := newCacheFixture(t)
	ctx := context.Background()

	item, err := cached.GetByCode(ctx, "MS-ROD-8")
	require.NoError(t, err)
	_, err = cached.ListByName(ctx, Normalize(item.Name))
	require.NoError(t, err)

	require.NoError(t, cached.Invalidate(ctx, item))

	_, err = cached.GetByCode(ctx, "MS-ROD-8")
	require.NoError(t, err)
	require.Equal(t, 2, inner.codeCalls)
}
