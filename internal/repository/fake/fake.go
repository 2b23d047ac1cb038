// Package fake provides configurable in-memory repositories. Each fake
// returns the result it was configured with, counts calls and remembers the
// last arguments.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/repository"
)

const notConfigured = "Not configured"

type ProductRepository struct {
	mu sync.Mutex

	products    network.Result[[]network.ProductItem]
	productByID network.Result[network.ProductAPI]
	search      network.Result[[]network.ProductItem]
	news        network.Result[[]network.News]

	// SearchFunc, when set, overrides the configured search result.
	SearchFunc  func(query string) network.Result[[]network.ProductItem]
	searchDelay time.Duration

	GetProductsCalls    int
	GetProductByIDCalls int
	SearchCalls         int
	GetNewsCalls        int
	LastSearchQuery     string
	LastProductID       string
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products:    network.Success([]network.ProductItem{}),
		productByID: network.Failure[network.ProductAPI](notConfigured, 0),
		search:      network.Success([]network.ProductItem{}),
		news:        network.Success([]network.News{}),
	}
}

func (f *ProductRepository) SetProductsSuccess(items []network.ProductItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = network.Success(items)
}

func (f *ProductRepository) SetProductsError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = network.Failure[[]network.ProductItem](message, code)
}

func (f *ProductRepository) SetProductByIDSuccess(p network.ProductAPI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productByID = network.Success(p)
}

func (f *ProductRepository) SetSearchSuccess(items []network.ProductItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = network.Success(items)
}

func (f *ProductRepository) SetSearchError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = network.Failure[[]network.ProductItem](message, code)
}

// SetSearchDelay makes every search wait d before answering. A cancelled
// context ends the wait early with an Error result.
func (f *ProductRepository) SetSearchDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchDelay = d
}

func (f *ProductRepository) SetNewsSuccess(news []network.News) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.news = network.Success(news)
}

func (f *ProductRepository) SetNewsError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.news = network.Failure[[]network.News](message, code)
}

func (f *ProductRepository) GetProducts(context.Context) network.Result[[]network.ProductItem] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetProductsCalls++
	return f.products
}

func (f *ProductRepository) GetProductByID(_ context.Context, productID string) network.Result[network.ProductAPI] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetProductByIDCalls++
	f.LastProductID = productID
	return f.productByID
}

func (f *ProductRepository) SearchProducts(ctx context.Context, query string) network.Result[[]network.ProductItem] {
	f.mu.Lock()
	f.SearchCalls++
	f.LastSearchQuery = query
	delay, result, fn := f.searchDelay, f.search, f.SearchFunc
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return network.FailureFrom[[]network.ProductItem](ctx.Err())
		}
	}
	if fn != nil {
		return fn(query)
	}
	return result
}

func (f *ProductRepository) GetNews(context.Context) network.Result[[]network.News] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetNewsCalls++
	return f.news
}

// Calls returns the GetProducts and SearchProducts counts.
func (f *ProductRepository) Calls() (products, search int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.GetProductsCalls, f.SearchCalls
}

type CartRepository struct {
	mu sync.Mutex

	add    network.Result[network.ResponseCart]
	update network.Result[network.ResponseCart]

	AddCalls       int
	UpdateCalls    int
	LastUserID     string
	LastProductID  string
	LastCount      int
	LastCartItemID string
}

var _ repository.CartRepository = (*CartRepository)(nil)

func NewCartRepository() *CartRepository {
	return &CartRepository{
		add:    network.Failure[network.ResponseCart](notConfigured, 0),
		update: network.Failure[network.ResponseCart](notConfigured, 0),
	}
}

func (f *CartRepository) SetAddSuccess(c network.ResponseCart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add = network.Success(c)
}

func (f *CartRepository) SetAddError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add = network.Failure[network.ResponseCart](message, code)
}

func (f *CartRepository) SetUpdateSuccess(c network.ResponseCart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.update = network.Success(c)
}

func (f *CartRepository) SetUpdateError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.update = network.Failure[network.ResponseCart](message, code)
}

func (f *CartRepository) AddToCart(_ context.Context, userID, productID string, count int) network.Result[network.ResponseCart] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	f.LastUserID, f.LastProductID, f.LastCount = userID, productID, count
	return f.add
}

func (f *CartRepository) UpdateCartItem(_ context.Context, cartItemID, userID, productID string, count int) network.Result[network.ResponseCart] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastCartItemID = cartItemID
	f.LastUserID, f.LastProductID, f.LastCount = userID, productID, count
	return f.update
}

type OrderRepository struct {
	mu sync.Mutex

	// Results are consumed in order; the last one repeats.
	results []network.Result[network.ResponseOrder]

	Calls      int
	ProductIDs []string
	Counts     []int
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (f *OrderRepository) SetSuccess(o network.ResponseOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = []network.Result[network.ResponseOrder]{network.Success(o)}
}

func (f *OrderRepository) SetError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = []network.Result[network.ResponseOrder]{network.Failure[network.ResponseOrder](message, code)}
}

// SetSequence answers successive calls with results in order.
func (f *OrderRepository) SetSequence(results ...network.Result[network.ResponseOrder]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = results
}

func (f *OrderRepository) CreateOrder(_ context.Context, userID, productID string, count int) network.Result[network.ResponseOrder] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.ProductIDs = append(f.ProductIDs, productID)
	f.Counts = append(f.Counts, count)

	if len(f.results) == 0 {
		return network.Failure[network.ResponseOrder](notConfigured, 0)
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r
}

type ProjectRepository struct {
	mu sync.Mutex

	projects network.Result[[]network.ProjectAPI]
	create   network.Result[network.ProjectAPI]

	GetCalls    int
	CreateCalls int
	LastRequest network.RequestProject
	LastImage   *network.Image
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		projects: network.Success([]network.ProjectAPI{}),
		create:   network.Failure[network.ProjectAPI](notConfigured, 0),
	}
}

func (f *ProjectRepository) SetProjectsSuccess(p []network.ProjectAPI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = network.Success(p)
}

func (f *ProjectRepository) SetProjectsError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = network.Failure[[]network.ProjectAPI](message, code)
}

func (f *ProjectRepository) SetCreateSuccess(p network.ProjectAPI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.create = network.Success(p)
}

func (f *ProjectRepository) SetCreateError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.create = network.Failure[network.ProjectAPI](message, code)
}

func (f *ProjectRepository) GetProjects(context.Context) network.Result[[]network.ProjectAPI] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	return f.projects
}

func (f *ProjectRepository) CreateProject(_ context.Context, req network.RequestProject, image *network.Image) network.Result[network.ProjectAPI] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	f.LastRequest = req
	f.LastImage = image
	return f.create
}

type AuthRepository struct {
	mu sync.Mutex

	register network.Result[network.ResponseRegister]
	login    network.Result[network.ResponseAuth]
	user     network.Result[network.User]
	logout   network.Result[repository.Unit]

	RegisterCalls int
	LoginCalls    int
	LogoutCalls   int
	UpdateCalls   int
	LastEmail     string
	LastPassword  string
	LastPatch     network.UserPatch
}

var _ repository.AuthRepository = (*AuthRepository)(nil)

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{
		register: network.Failure[network.ResponseRegister](notConfigured, 0),
		login:    network.Failure[network.ResponseAuth](notConfigured, 0),
		user:     network.Failure[network.User](notConfigured, 0),
		logout:   network.Success(repository.Unit{}),
	}
}

func (f *AuthRepository) SetRegisterSuccess(r network.ResponseRegister) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.register = network.Success(r)
}

func (f *AuthRepository) SetRegisterError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.register = network.Failure[network.ResponseRegister](message, code)
}

func (f *AuthRepository) SetLoginSuccess(r network.ResponseAuth) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login = network.Success(r)
}

func (f *AuthRepository) SetLoginError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login = network.Failure[network.ResponseAuth](message, code)
}

func (f *AuthRepository) SetUserSuccess(u network.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = network.Success(u)
}

func (f *AuthRepository) SetLogoutError(message string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logout = network.Failure[repository.Unit](message, code)
}

func (f *AuthRepository) Register(_ context.Context, email, password string) network.Result[network.ResponseRegister] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++
	f.LastEmail, f.LastPassword = email, password
	return f.register
}

func (f *AuthRepository) Login(_ context.Context, email, password string) network.Result[network.ResponseAuth] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastEmail, f.LastPassword = email, password
	return f.login
}

func (f *AuthRepository) GetUser(context.Context, string) network.Result[network.User] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *AuthRepository) UpdateUser(_ context.Context, _ string, patch network.UserPatch) network.Result[network.User] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastPatch = patch
	return f.user
}

func (f *AuthRepository) Logout(context.Context) network.Result[repository.Unit] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return f.logout
}
