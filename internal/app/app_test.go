package app

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/matule/internal/catalog"
	"github.com/fjod/matule/internal/config"
	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/mockapi"
	"github.com/fjod/matule/internal/notify"
	"github.com/fjod/matule/internal/repository"
	"github.com/fjod/matule/internal/storage"
	"github.com/fjod/matule/internal/viewmodel"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupApp(t *testing.T) *App {
	t.Helper()
	products, err := catalog.Bundled()
	require.NoError(t, err)
	ts := httptest.NewServer(mockapi.New(mockapi.Config{JWTSecret: []byte("test")}, products, quietLogger()).Handler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		BaseURL:  ts.URL + "/api/",
		FilesURL: ts.URL + "/api/files/",
		Timeout:  5 * time.Second,
		AuthMode: repository.AuthModeNetwork,
		Storage:  config.StorageMemory,
	}
	a, err := New(context.Background(), cfg, quietLogger(), Options{Store: storage.NewMemoryStore()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestApp_ShoppingFlow(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	a.Auth.SignUp(ctx, "anna@mail.ru", "Anna", "Passw0rd!")
	require.Equal(t, viewmodel.StatusSuccess, a.Auth.State.Value())
	a.Auth.SignIn(ctx, "anna@mail.ru", "Passw0rd!")
	require.Equal(t, viewmodel.StatusSuccess, a.Auth.State.Value())
	require.True(t, a.Tokens.HasToken())

	a.Catalogue.LoadProducts(ctx)
	products := a.Catalogue.Products.Value()
	require.Len(t, products, 10)

	a.Cart.AddToCart(ctx, products[0])
	a.Cart.AddToCart(ctx, products[0])
	items := a.Cart.Items.Value()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Synced())

	order, err := a.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Len(t, order.ServerIDs, 1)
	assert.Empty(t, a.Cart.Items.Value())

	stored, ok := a.Orders.OrderByID(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusPlaced, stored.Status)

	a.SignOut(ctx)
	assert.False(t, a.Tokens.HasToken())
	loggedIn, err := a.Sessions.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestApp_CheckoutEmptyCart(t *testing.T) {
	a := setupApp(t)

	_, err := a.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestApp_ProjectsRoundTrip(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()
	a.Auth.SignUp(ctx, "anna@mail.ru", "Anna", "Passw0rd!")
	a.Auth.SignIn(ctx, "anna@mail.ru", "Passw0rd!")

	a.Projects.AddProject(ctx, domain.Project{Name: "Capsule", Category: "New"}, nil)
	require.Equal(t, viewmodel.StatusSuccess, a.Projects.Status.Value())

	a.Projects.LoadProjects(ctx)
	projects := a.Projects.Projects.Value()
	require.Len(t, projects, 1)
	assert.Equal(t, "Capsule", projects[0].Name)
}

func TestApp_MockModeSkipsBackend(t *testing.T) {
	cfg := &config.Config{
		BaseURL:  "http://127.0.0.1:1/api/",
		Timeout:  time.Second,
		AuthMode: repository.AuthModeMock,
	}
	a, err := New(context.Background(), cfg, quietLogger(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	ctx := context.Background()
	a.Auth.SignUp(ctx, "mock@mail.ru", "Mock", "Passw0rd!")
	require.Equal(t, viewmodel.StatusSuccess, a.Auth.State.Value())
	a.Auth.SignIn(ctx, "mock@mail.ru", "Passw0rd!")
	assert.Equal(t, viewmodel.StatusSuccess, a.Auth.State.Value())
	assert.False(t, a.Tokens.HasToken())
	assert.Equal(t, "MockAuth mode", a.Mode.Label())
}

type countingNotifier struct {
	sent chan notify.Notification
}

func (n *countingNotifier) Notify(_ context.Context, notification notify.Notification) error {
	n.sent <- notification
	return nil
}

func TestApp_StartSchedulesReminders(t *testing.T) {
	notifier := &countingNotifier{sent: make(chan notify.Notification, 8)}
	cfg := &config.Config{AuthMode: repository.AuthModeMock, NotificationsEnabled: true}
	a, err := New(context.Background(), cfg, quietLogger(), Options{
		Notifier: notifier,
		Notify: notify.Config{
			InitialDelay:   10 * time.Millisecond,
			RepeatInterval: time.Hour,
			OneShotDelay:   time.Hour,
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	a.Start(context.Background())

	select {
	case got := <-notifier.sent:
		assert.Equal(t, notify.KindRepeating, got.Kind)
	case <-time.After(3 * time.Second):
		t.Fatal("no reminder sent")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	for _, cfg := range []*config.Config{
		{Storage: config.StorageMemory},
		{Storage: config.StorageSQLite, SQLitePath: ":memory:"},
		{Storage: config.StorageRedis, RedisAddr: mr.Addr()},
	} {
		store, err := OpenStore(ctx, cfg)
		require.NoError(t, err, cfg.Storage)
		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
		require.NoError(t, store.Close())
	}

	_, err := OpenStore(ctx, &config.Config{Storage: config.StorageRedis, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
