package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fjod/matule/internal/app"
	"github.com/fjod/matule/internal/catalog"
	"github.com/fjod/matule/internal/config"
	"github.com/fjod/matule/internal/mockapi"
	"github.com/fjod/matule/internal/repository"
	"github.com/fjod/matule/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupShell(t *testing.T) (*Shell, *bytes.Buffer, *app.App) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	products, err := catalog.Bundled()
	require.NoError(t, err)
	ts := httptest.NewServer(mockapi.New(mockapi.Config{JWTSecret: []byte("test")}, products, log).Handler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		BaseURL:  ts.URL + "/api/",
		FilesURL: ts.URL + "/api/files/",
		Timeout:  5 * time.Second,
		AuthMode: repository.AuthModeNetwork,
	}
	a, err := app.New(context.Background(), cfg, log, app.Options{Store: storage.NewMemoryStore()})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	out := &bytes.Buffer{}
	return NewShell(a, out), out, a
}

func TestShell_Session(t *testing.T) {
	shell, out, a := setupShell(t)
	script := strings.Join([]string{
		"register anna@mail.ru Anna Passw0rd!",
		"login anna@mail.ru Passw0rd!",
		"pin set 1234",
		"pin check 1234",
		"products",
		"search shirt",
		"cart show",
		"quit",
		"whoami",
	}, "\n")

	require.NoError(t, shell.Run(context.Background(), strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "Registered anna@mail.ru")
	assert.Contains(t, text, "Signed in as anna@mail.ru")
	assert.Contains(t, text, "PIN ok")
	assert.Contains(t, text, "Sunday Shirt")
	assert.Contains(t, text, "Cart is empty")
	assert.NotContains(t, text, "logged_in=")

	route, err := a.Sessions.LastRoute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cart", route)
}

func TestShell_CartAndCheckout(t *testing.T) {
	shell, out, a := setupShell(t)
	ctx := context.Background()
	require.NoError(t, shell.Exec(ctx, "register anna@mail.ru Anna Passw0rd!"))
	require.NoError(t, shell.Exec(ctx, "login anna@mail.ru Passw0rd!"))
	require.NoError(t, shell.Exec(ctx, "products"))

	id := a.Catalogue.Products.Value()[0].ID
	require.NoError(t, shell.Exec(ctx, "cart add "+strconv.Itoa(id)))
	require.NoError(t, shell.Exec(ctx, "cart inc "+strconv.Itoa(id)))
	assert.Equal(t, 2, a.Cart.Quantity(id))
	assert.Contains(t, out.String(), "synced")

	require.NoError(t, shell.Exec(ctx, "checkout"))
	assert.Contains(t, out.String(), "Placed")
	require.NoError(t, shell.Exec(ctx, "orders"))
	assert.Len(t, a.Orders.Orders.Value(), 1)

	assert.EqualError(t, shell.Exec(ctx, "checkout"), app.ErrEmptyCart.Error())
}

func TestShell_Errors(t *testing.T) {
	shell, _, _ := setupShell(t)
	ctx := context.Background()

	assert.ErrorContains(t, shell.Exec(ctx, "dance"), "unknown command")
	assert.ErrorContains(t, shell.Exec(ctx, "login only-email"), "usage:")
	assert.ErrorContains(t, shell.Exec(ctx, "register bad Anna Passw0rd!"), "invalid email")
	assert.ErrorContains(t, shell.Exec(ctx, "register a@mail.ru Anna weak"), "password")
	assert.ErrorContains(t, shell.Exec(ctx, "profile"), "Not signed in")
	assert.ErrorContains(t, shell.Exec(ctx, "pin set 12"), "PIN must be 4 digits")
	assert.NoError(t, shell.Exec(ctx, "   "))
}

func TestShell_Projects(t *testing.T) {
	shell, out, a := setupShell(t)
	ctx := context.Background()
	require.NoError(t, shell.Exec(ctx, "register anna@mail.ru Anna Passw0rd!"))
	require.NoError(t, shell.Exec(ctx, "login anna@mail.ru Passw0rd!"))

	require.NoError(t, shell.Exec(ctx, "project add Capsule New"))
	require.NoError(t, shell.Exec(ctx, "projects"))
	assert.Contains(t, out.String(), "Capsule")
	assert.Contains(t, out.String(), "Just now")

	id := a.Projects.Projects.Value()[0].ID
	require.NoError(t, shell.Exec(ctx, "project show "+id))
	route, err := a.Sessions.LastRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ProjectDetails/"+id, route)
}
