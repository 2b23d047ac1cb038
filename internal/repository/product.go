package repository

import (
	"context"
	"strings"

	"github.com/fjod/matule/internal/network"
)

type HTTPProductRepository struct {
	api *network.Client
}

func NewHTTPProductRepository(api *network.Client) *HTTPProductRepository {
	return &HTTPProductRepository{api: api}
}

func (r *HTTPProductRepository) GetProducts(ctx context.Context) network.Result[[]network.ProductItem] {
	page, err := r.api.GetProducts(ctx, "")
	if err != nil {
		return network.FailureFrom[[]network.ProductItem](err)
	}
	return network.Success(page.Items)
}

func (r *HTTPProductRepository) GetProductByID(ctx context.Context, productID string) network.Result[network.ProductAPI] {
	product, err := r.api.GetProduct(ctx, productID)
	if err != nil {
		return network.FailureFrom[network.ProductAPI](err)
	}
	return network.Success(*product)
}

// SearchProducts asks the backend for products whose title contains query.
func (r *HTTPProductRepository) SearchProducts(ctx context.Context, query string) network.Result[[]network.ProductItem] {
	page, err := r.api.GetProducts(ctx, TitleFilter(query))
	if err != nil {
		return network.FailureFrom[[]network.ProductItem](err)
	}
	return network.Success(page.Items)
}

func (r *HTTPProductRepository) GetNews(ctx context.Context) network.Result[[]network.News] {
	page, err := r.api.GetNews(ctx)
	if err != nil {
		return network.FailureFrom[[]network.News](err)
	}
	return network.Success(page.Items)
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// TitleFilter builds the "title contains" filter expression.
func TitleFilter(query string) string {
	return "(title ?~ '" + filterEscaper.Replace(query) + "')"
}
