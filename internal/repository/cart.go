package repository

import (
	"context"

	"github.com/fjod/matule/internal/network"
)

type HTTPCartRepository struct {
	api *network.Client
}

func NewHTTPCartRepository(api *network.Client) *HTTPCartRepository {
	return &HTTPCartRepository{api: api}
}

func (r *HTTPCartRepository) AddToCart(ctx context.Context, userID, productID string, count int) network.Result[network.ResponseCart] {
	cart, err := r.api.CreateCartItem(ctx, network.RequestCart{UserID: userID, ProductID: productID, Count: count})
	if err != nil {
		return network.FailureFrom[network.ResponseCart](err)
	}
	return network.Success(*cart)
}

func (r *HTTPCartRepository) UpdateCartItem(ctx context.Context, cartItemID, userID, productID string, count int) network.Result[network.ResponseCart] {
	cart, err := r.api.UpdateCartItem(ctx, cartItemID, network.RequestCart{UserID: userID, ProductID: productID, Count: count})
	if err != nil {
		return network.FailureFrom[network.ResponseCart](err)
	}
	return network.Success(*cart)
}
