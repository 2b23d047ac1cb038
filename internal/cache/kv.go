package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/storage"
)

const (
	namespace = "product_cache"
	listKey   = "cached_products"
)

func NewKVProductCache(store storage.Store) *KVProductCache {
	return &KVProductCache{store: store}
}

// KVProductCache keeps the whole product list as one JSON value.
type KVProductCache struct {
	store storage.Store
}

func (c KVProductCache) Get(ctx context.Context) ([]domain.Product, error) {
	data, err := c.store.Get(ctx, cacheKey())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("store get failed: %w", err)
	}

	var products []domain.Product
	if err2 := json.Unmarshal(data, &products); err2 != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err2)
	}

	return products, nil
}

func (c KVProductCache) Set(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}
	if err := c.store.Set(ctx, cacheKey(), data); err != nil {
		return fmt.Errorf("store set failed: %w", err)
	}
	return nil
}

func (c KVProductCache) Delete(ctx context.Context) error {
	if err := c.store.Delete(ctx, cacheKey()); err != nil {
		return fmt.Errorf("store delete failed: %w", err)
	}

	return nil
}

func cacheKey() string {
	return fmt.Sprintf("%s:%s", namespace, listKey)
}
