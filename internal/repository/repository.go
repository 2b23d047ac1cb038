// Package repository turns backend calls into network.Result values. The
// HTTP implementations never return Go errors: every failure, transport or
// HTTP, becomes an Error result carrying the message to show.
package repository

import (
	"context"

	"github.com/fjod/matule/internal/network"
)

const (
	MessageRegistrationFailed = "Registration failed"
	MessageInvalidCredentials = "Invalid email or password"
	MessageLogoutFailed       = "Logout failed"
	MessageUserExists         = "User already exists"
	MessageUserNotFound       = "User not found"
)

// Unit is the payload of results that carry no data.
type Unit struct{}

type AuthRepository interface {
	Register(ctx context.Context, email, password string) network.Result[network.ResponseRegister]
	// Login stores the token and user id on success.
	Login(ctx context.Context, email, password string) network.Result[network.ResponseAuth]
	GetUser(ctx context.Context, userID string) network.Result[network.User]
	UpdateUser(ctx context.Context, userID string, patch network.UserPatch) network.Result[network.User]
	Logout(ctx context.Context) network.Result[Unit]
}

type CartRepository interface {
	AddToCart(ctx context.Context, userID, productID string, count int) network.Result[network.ResponseCart]
	UpdateCartItem(ctx context.Context, cartItemID, userID, productID string, count int) network.Result[network.ResponseCart]
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, userID, productID string, count int) network.Result[network.ResponseOrder]
}

type ProjectRepository interface {
	GetProjects(ctx context.Context) network.Result[[]network.ProjectAPI]
	// CreateProject uploads image with the record when it is not nil.
	CreateProject(ctx context.Context, req network.RequestProject, image *network.Image) network.Result[network.ProjectAPI]
}

type ProductRepository interface {
	GetProducts(ctx context.Context) network.Result[[]network.ProductItem]
	GetProductByID(ctx context.Context, productID string) network.Result[network.ProductAPI]
	SearchProducts(ctx context.Context, query string) network.Result[[]network.ProductItem]
	GetNews(ctx context.Context) network.Result[[]network.News]
}

// TokenStore is the part of the token manager the auth repository writes to.
type TokenStore interface {
	SaveToken(ctx context.Context, token string) error
	SaveUserID(ctx context.Context, userID string) error
	UserID() string
	ClearAuth(ctx context.Context) error
}
