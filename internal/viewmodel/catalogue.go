package viewmodel

import (
	"context"
	"strings"
	"sync"

	"github.com/fjod/matule/internal/cache"
	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	CategoryAll             = "All"
	MessageLoadProductsFail = "Failed to load products"
)

// LocalCatalogue is the offline product source.
type LocalCatalogue interface {
	Products(ctx context.Context) []domain.Product
}

type CatalogueViewModel struct {
	remote repository.ProductRepository
	local  LocalCatalogue
	cache  cache.ProductCache
	log    logrus.FieldLogger

	// Products is the filtered list on screen; AllProducts is the unfiltered
	// source it is derived from.
	Products         *State[[]domain.Product]
	AllProducts      *State[[]domain.Product]
	SelectedCategory *State[string]
	Status           *State[Status]

	loads singleflight.Group

	mu           sync.Mutex
	query        string
	cancelSearch context.CancelFunc
}

// NewCatalogueViewModel wires the catalogue. remote and c may be nil; without
// remote the catalogue is local only and search filters in memory.
func NewCatalogueViewModel(remote repository.ProductRepository, local LocalCatalogue, c cache.ProductCache, log logrus.FieldLogger) *CatalogueViewModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogueViewModel{
		remote:           remote,
		local:            local,
		cache:            c,
		log:              log.WithField("component", "catalogue"),
		Products:         NewState[[]domain.Product](nil),
		AllProducts:      NewState[[]domain.Product](nil),
		SelectedCategory: NewState(CategoryAll),
		Status:           NewState(StatusIdle),
	}
}

// LoadProducts fetches the catalogue from the backend and falls back to the
// bundled list when the backend fails or has nothing. Concurrent calls share
// one load. The shared load ignores the cancellation of whichever caller
// started it; a cancelled caller only stops waiting.
func (vm *CatalogueViewModel) LoadProducts(ctx context.Context) {
	loadCtx := context.WithoutCancel(ctx)
	ch := vm.loads.DoChan("products", func() (any, error) {
		vm.loadProducts(loadCtx)
		return nil, nil
	})
	select {
	case <-ch:
	case <-ctx.Done():
	}
}

func (vm *CatalogueViewModel) loadProducts(ctx context.Context) {
	vm.Status.Set(StatusLoading)

	if vm.remote == nil {
		vm.finishWithLocal(ctx, MessageLoadProductsFail)
		return
	}

	result := vm.remote.GetProducts(ctx)
	switch result.Status() {
	case network.StatusSuccess:
		items, _ := result.Data()
		products := ProductsFromItems(items)
		if len(products) == 0 {
			vm.log.Info("Backend returned no products, using bundled catalogue")
			vm.finishWithLocal(ctx, MessageLoadProductsFail)
			return
		}
		vm.AllProducts.Set(products)
		vm.applyFilters(products)
		vm.cacheProducts(ctx, products)
		vm.Status.Set(StatusSuccess)
	case network.StatusError:
		msg, _ := result.ErrorMessage()
		vm.log.WithField("error", msg).Warn("Loading products failed, using bundled catalogue")
		vm.finishWithLocal(ctx, msg)
	}
}

// finishWithLocal shows the bundled list, or failMessage when it is empty.
func (vm *CatalogueViewModel) finishWithLocal(ctx context.Context, failMessage string) {
	var products []domain.Product
	if vm.local != nil {
		products = vm.local.Products(ctx)
	}
	vm.AllProducts.Set(products)
	vm.applyFilters(products)

	if len(products) == 0 {
		vm.Status.Set(StatusError(failMessage))
		return
	}
	vm.Status.Set(StatusSuccess)
}

func (vm *CatalogueViewModel) cacheProducts(ctx context.Context, products []domain.Product) {
	if vm.cache == nil {
		return
	}
	if err := vm.cache.Set(ctx, products); err != nil {
		vm.log.WithError(err).Warn("Failed to cache products")
	}
}

func (vm *CatalogueViewModel) SetCategory(category string) {
	vm.SelectedCategory.Set(category)
	vm.applyFilters(vm.AllProducts.Value())
}

// FilterProducts applies query. A non-blank query is sent to the backend,
// cancelling any search still running; results for a query that has since
// changed are dropped. A blank query filters locally.
func (vm *CatalogueViewModel) FilterProducts(ctx context.Context, query string) {
	vm.mu.Lock()
	vm.query = query
	if vm.cancelSearch != nil {
		vm.cancelSearch()
		vm.cancelSearch = nil
	}
	if vm.remote == nil || strings.TrimSpace(query) == "" {
		vm.mu.Unlock()
		vm.applyFilters(vm.AllProducts.Value())
		vm.Status.Set(StatusSuccess)
		return
	}
	searchCtx, cancel := context.WithCancel(ctx)
	vm.cancelSearch = cancel
	vm.mu.Unlock()
	defer cancel()

	vm.Status.Set(StatusLoading)
	result := vm.remote.SearchProducts(searchCtx, query)

	if vm.stale(searchCtx, query) {
		vm.log.WithField("query", query).Debug("Dropping stale search result")
		return
	}

	switch result.Status() {
	case network.StatusSuccess:
		items, _ := result.Data()
		source := ProductsFromItems(items)
		if len(source) == 0 {
			source = vm.AllProducts.Value()
		}
		vm.Products.Set(filterProducts(source, vm.SelectedCategory.Value(), query))
		vm.Status.Set(StatusSuccess)
	case network.StatusError:
		vm.applyFilters(vm.AllProducts.Value())
		if len(vm.Products.Value()) > 0 {
			vm.Status.Set(StatusSuccess)
			return
		}
		msg, _ := result.ErrorMessage()
		vm.Status.Set(StatusError(msg))
	}
}

func (vm *CatalogueViewModel) stale(searchCtx context.Context, query string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return searchCtx.Err() != nil || vm.query != query
}

func (vm *CatalogueViewModel) currentQuery() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.query
}

func (vm *CatalogueViewModel) applyFilters(source []domain.Product) {
	vm.Products.Set(filterProducts(source, vm.SelectedCategory.Value(), vm.currentQuery()))
}

// Categories returns "All" followed by the distinct categories of the
// loaded products.
func (vm *CatalogueViewModel) Categories() []string {
	out := []string{CategoryAll}
	seen := make(map[string]struct{})
	for _, p := range vm.AllProducts.Value() {
		c := p.Category
		if strings.TrimSpace(c) == "" || strings.EqualFold(c, CategoryAll) {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (vm *CatalogueViewModel) ResetState() {
	vm.Status.Set(StatusIdle)
}

func filterProducts(source []domain.Product, category, query string) []domain.Product {
	out := make([]domain.Product, 0, len(source))
	for _, p := range source {
		if category != CategoryAll && !containsFold(p.Category, category) {
			continue
		}
		if strings.TrimSpace(query) != "" &&
			!containsFold(p.Title, query) && !containsFold(p.Description, query) && !containsFold(p.Category, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
