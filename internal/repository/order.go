package repository

import (
	"context"

	"github.com/fjod/matule/internal/network"
)

type HTTPOrderRepository struct {
	api *network.Client
}

func NewHTTPOrderRepository(api *network.Client) *HTTPOrderRepository {
	return &HTTPOrderRepository{api: api}
}

func (r *HTTPOrderRepository) CreateOrder(ctx context.Context, userID, productID string, count int) network.Result[network.ResponseOrder] {
	order, err := r.api.CreateOrder(ctx, network.RequestOrder{UserID: userID, ProductID: productID, Count: count})
	if err != nil {
		return network.FailureFrom[network.ResponseOrder](err)
	}
	return network.Success(*order)
}
