package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/fjod/matule/internal/cache"
	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestProducts_BundledAndCached(t *testing.T) {
	pc := cache.NewKVProductCache(storage.NewMemoryStore())
	repo := NewLocalRepository(pc, quietLogger())
	ctx := context.Background()

	products := repo.Products(ctx)
	require.Len(t, products, 10)
	assert.Equal(t, "Sunday Shirt", products[0].Title)

	cached, err := pc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, cached)
}

func TestProducts_BrokenBundleFallsBackToCache(t *testing.T) {
	pc := cache.NewKVProductCache(storage.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, pc.Set(ctx, []domain.Product{{ID: 42, Title: "Cached"}}))

	repo := newLocalRepository([]byte("not json"), pc, quietLogger())
	products := repo.Products(ctx)
	require.Len(t, products, 1)
	assert.Equal(t, 42, products[0].ID)
}

func TestProducts_BrokenBundleNoCache(t *testing.T) {
	repo := newLocalRepository([]byte("[{"), cache.NewKVProductCache(storage.NewMemoryStore()), quietLogger())
	assert.Empty(t, repo.Products(context.Background()))
}

func TestProductByID(t *testing.T) {
	repo := NewLocalRepository(nil, quietLogger())

	p, ok := repo.ProductByID(context.Background(), 9)
	require.True(t, ok)
	assert.Equal(t, "Leather Belt", p.Title)

	_, ok = repo.ProductByID(context.Background(), 999)
	assert.False(t, ok)
}

func TestSearch_TitleAndDescription(t *testing.T) {
	repo := NewLocalRepository(nil, quietLogger())
	ctx := context.Background()

	byTitle := repo.Search(ctx, "SHIRT")
	require.Len(t, byTitle, 1)
	assert.Equal(t, 1, byTitle[0].ID)

	byDescription := repo.Search(ctx, "linen")
	require.Len(t, byDescription, 1)
	assert.Equal(t, 2, byDescription[0].ID)

	assert.Empty(t, repo.Search(ctx, "zzz"))
}

func TestCategories_DistinctInOrder(t *testing.T) {
	repo := NewLocalRepository(nil, quietLogger())

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Popular", "New", "Men", "Women", "Accessories"}, categories)

	_, err = newLocalRepository([]byte("oops"), nil, quietLogger()).Categories(context.Background())
	assert.Error(t, err)
}

func TestBundled(t *testing.T) {
	products, err := Bundled()
	require.NoError(t, err)
	assert.Len(t, products, 10)
	assert.Equal(t, "Sunday Shirt", products[0].Title)
}
