// Package app assembles the client from configuration: storage, session,
// repositories, view-models and the inactivity scheduler.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/matule/internal/cache"
	"github.com/fjod/matule/internal/catalog"
	"github.com/fjod/matule/internal/config"
	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/notify"
	"github.com/fjod/matule/internal/repository"
	"github.com/fjod/matule/internal/session"
	"github.com/fjod/matule/internal/storage"
	"github.com/fjod/matule/internal/viewmodel"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

type App struct {
	Mode     repository.AuthMode
	Store    storage.Store
	Tokens   *session.TokenManager
	Sessions *session.SessionManager
	API      *network.Client
	Local    *catalog.LocalRepository

	Auth      *viewmodel.AuthViewModel
	Catalogue *viewmodel.CatalogueViewModel
	Cart      *viewmodel.CartViewModel
	Orders    *viewmodel.OrdersViewModel
	Projects  *viewmodel.ProjectsViewModel
	Scheduler *notify.Scheduler

	AuthRepo    repository.AuthRepository
	ProductRepo repository.ProductRepository

	log logrus.FieldLogger
}

// Options overrides parts of the wiring. Zero values keep the defaults.
type Options struct {
	Store    storage.Store
	Notifier notify.Notifier
	Notify   notify.Config
}

func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, opts Options) (*App, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	store := opts.Store
	if store == nil {
		var err error
		if store, err = OpenStore(ctx, cfg); err != nil {
			return nil, err
		}
	}

	tokens, err := session.NewTokenManager(ctx, store, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load auth: %w", err)
	}
	sessions := session.NewSessionManager(store)

	api, err := network.NewClient(network.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Tokens:  tokens.Token,
		Logger:  log,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	productCache := cache.NewKVProductCache(store)
	local := catalog.NewLocalRepository(productCache, log)

	authRepo := repository.NewAuthRepository(cfg.AuthMode, api, tokens, log)
	productRepo := repository.NewHTTPProductRepository(api)

	orders, err := viewmodel.NewOrdersViewModel(ctx, store, repository.NewHTTPOrderRepository(api), tokens, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	notifyCfg := opts.Notify
	if notifyCfg == (notify.Config{}) {
		notifyCfg = notify.DefaultConfig()
	}

	a := &App{
		Mode:        cfg.AuthMode,
		Store:       store,
		Tokens:      tokens,
		Sessions:    sessions,
		API:         api,
		Local:       local,
		AuthRepo:    authRepo,
		ProductRepo: productRepo,
		Auth:        viewmodel.NewAuthViewModel(authRepo, tokens, sessions, log),
		Catalogue:   viewmodel.NewCatalogueViewModel(productRepo, local, productCache, log),
		Cart:        viewmodel.NewCartViewModel(repository.NewHTTPCartRepository(api), tokens, log),
		Orders:      orders,
		Projects: viewmodel.NewProjectsViewModel(store, repository.NewHTTPProjectRepository(api),
			tokens, local, cfg.FilesURL, log),
		Scheduler: notify.NewScheduler(sessions, notifier, notifyCfg, log),
		log:       log,
	}

	if err := sessions.SetNotificationsEnabled(ctx, cfg.NotificationsEnabled); err != nil {
		log.WithError(err).Warn("Failed to store notification setting")
	}
	return a, nil
}

// OpenStore opens the key-value backend named by cfg.Storage.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return storage.NewSQLiteStore(cfg.SQLitePath)
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return storage.NewRedisStore(client), nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

// Start launches the inactivity reminders.
func (a *App) Start(ctx context.Context) {
	a.Scheduler.Start()
	if err := a.Scheduler.Schedule(ctx); err != nil {
		a.log.WithError(err).Warn("Failed to schedule reminders")
	}
}

// Checkout turns the cart into an order and empties the cart.
func (a *App) Checkout(ctx context.Context) (domain.Order, error) {
	items := a.Cart.Items.Value()
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	order := a.Orders.AddOrder(ctx, items, a.Cart.Total())
	a.Cart.ClearCart()
	return order, nil
}

// SignOut logs out and drops every per-user screen state.
func (a *App) SignOut(ctx context.Context) {
	a.Auth.Logout(ctx)
	a.Cart.ResetState()
	a.Orders.ResetState()
	a.Projects.ResetState()
	a.Catalogue.ResetState()
}

// Close cancels the reminders and releases the store.
func (a *App) Close(ctx context.Context) error {
	a.Scheduler.Cancel()
	a.Scheduler.Stop(ctx)
	return a.Store.Close()
}
