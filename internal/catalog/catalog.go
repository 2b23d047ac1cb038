// Package catalog serves the product list bundled with the client. It is
// the offline source the catalogue falls back to when the backend is
// unreachable or returns nothing.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fjod/matule/internal/cache"
	"github.com/fjod/matule/internal/domain"
	"github.com/sirupsen/logrus"
)

//go:embed products.json
var bundled []byte

// LocalRepository reads the bundled catalogue. Every successful parse is
// written to the product cache so a later broken bundle still has data.
type LocalRepository struct {
	data  []byte
	cache cache.ProductCache
	log   logrus.FieldLogger
}

func NewLocalRepository(c cache.ProductCache, log logrus.FieldLogger) *LocalRepository {
	return newLocalRepository(bundled, c, log)
}

func newLocalRepository(data []byte, c cache.ProductCache, log logrus.FieldLogger) *LocalRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LocalRepository{data: data, cache: c, log: log}
}

// Products returns the bundled list, or the cached list when the bundle
// cannot be parsed. It never fails; an empty list is the worst case.
func (r *LocalRepository) Products(ctx context.Context) []domain.Product {
	products, err := parse(r.data)
	if err != nil {
		r.log.WithError(err).Warn("Bundled catalogue unreadable, using cache")
		return r.cached(ctx)
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, products); err != nil {
			r.log.WithError(err).Warn("Failed to cache products")
		}
	}
	return products
}

func (r *LocalRepository) ProductByID(ctx context.Context, id int) (domain.Product, bool) {
	for _, p := range r.Products(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Search matches query against title and description, ignoring case.
func (r *LocalRepository) Search(ctx context.Context, query string) []domain.Product {
	q := strings.ToLower(query)
	var out []domain.Product
	for _, p := range r.Products(ctx) {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories of the bundle in first-seen
// order.
func (r *LocalRepository) Categories(ctx context.Context) ([]string, error) {
	products, err := parse(r.data)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

func (r *LocalRepository) cached(ctx context.Context) []domain.Product {
	if r.cache == nil {
		return nil
	}
	products, err := r.cache.Get(ctx)
	if err != nil {
		return nil
	}
	return products
}

func parse(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	return products, nil
}

// Bundled returns the products shipped with the client.
func Bundled() ([]domain.Product, error) {
	return parse(bundled)
}
