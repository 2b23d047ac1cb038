package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fjod/matule/internal/network"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// mockTokenStore is an in-memory TokenStore that counts writes.
type mockTokenStore struct {
	mu         sync.Mutex
	token      string
	userID     string
	clearCalls int
	saveErr    error
}

func (m *mockTokenStore) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *mockTokenStore) SaveUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.userID = userID
	return nil
}

func (m *mockTokenStore) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

func (m *mockTokenStore) ClearAuth(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.userID = "", ""
	m.clearCalls++
	return nil
}

var errStoreDown = errors.New("store down")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// setupAPI starts an httptest server on mux and returns a client bound to it.
func setupAPI(t *testing.T, mux *http.ServeMux) *network.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := network.NewClient(network.ClientConfig{
		BaseURL: srv.URL + "/api/",
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	return client
}

// deadAPI returns a client pointing at a closed server so every call fails
// at the transport level.
func deadAPI(t *testing.T) *network.Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := network.NewClient(network.ClientConfig{BaseURL: url + "/api/", Logger: quietLogger()})
	require.NoError(t, err)
	return client
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

const (
	successLoginJSON = `{
		"record": {
			"id": "user123",
			"collectionId": "users",
			"collectionName": "_pb_users_auth_",
			"created": "2026-01-01T00:00:00Z",
			"updated": "2026-01-01T00:00:00Z",
			"emailVisibility": true,
			"firstname": "Ivan",
			"lastname": "Ivanov",
			"secondname": "Ivanovich",
			"verified": true,
			"datebirthday": "1990-01-01",
			"gender": "Male"
		},
		"token": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.test\r\n"
	}`

	successRegisterJSON = `{
		"id": "user456",
		"collectionId": "users",
		"collectionName": "_pb_users_auth_",
		"created": "2026-01-02T00:00:00Z",
		"updated": "2026-01-02T00:00:00Z",
		"emailVisibility": true,
		"verified": false
	}`

	errorJSON              = `{"status": 400, "message": "Failed to create record.", "data": {}}`
	invalidCredentialsJSON = `{"status": 400, "message": "Invalid credentials.", "data": {}}`

	productsListJSON = `{
		"page": 1, "perPage": 30, "totalPages": 1, "totalItems": 2,
		"items": [
			{"id": "prod1", "title": "T-shirt", "price": 1500, "typeCloses": "Top", "type": "New"},
			{"id": "prod2", "title": "Jeans", "price": 3000, "typeCloses": "Bottom", "type": "Popular"}
		]
	}`

	productDetailJSON = `{
		"id": "prod1", "collectionId": "products", "collectionName": "products",
		"created": "2026-01-01T00:00:00Z", "updated": "2026-01-01T00:00:00Z",
		"title": "T-shirt", "description": "Cotton t-shirt", "price": 1500,
		"typeCloses": "Top", "type": "New", "approximateCost": "1500 ₽"
	}`

	cartItemJSON = `{
		"id": "cart1", "collectionId": "cart", "collectionName": "cart",
		"created": "2026-01-01T00:00:00Z", "updated": "2026-01-01T00:00:00Z",
		"user_id": "user123", "product_id": "prod1", "count": 2
	}`

	projectsListJSON = `{
		"page": 1, "perPage": 30, "totalPages": 1, "totalItems": 1,
		"items": [{
			"id": "proj1", "collectionId": "project", "collectionName": "project",
			"created": "2026-01-01T00:00:00Z", "updated": "2026-01-01T00:00:00Z",
			"title": "My project", "dateStart": "2026-01-01", "dateEnd": "2026-12-31",
			"gender": "Male", "description_source": "Description", "category": "Popular",
			"image": "image.jpg", "user_id": "user123"
		}]
	}`

	createdProjectJSON = `{
		"id": "proj2", "collectionId": "project", "collectionName": "project",
		"created": "2026-01-02T00:00:00Z", "updated": "2026-01-02T00:00:00Z",
		"title": "New project", "dateStart": "2026-02-01", "dateEnd": "2026-06-30",
		"gender": "Female", "description_source": "New description", "category": "New",
		"image": "", "user_id": "user123"
	}`

	orderJSON = `{
		"id": "order1", "collectionId": "orders", "collectionName": "orders",
		"created": "2026-01-01T00:00:00Z", "updated": "2026-01-01T00:00:00Z",
		"user_id": "user123", "product_id": "prod1", "count": 3
	}`

	newsListJSON = `{
		"page": 1, "perPage": 30, "totalPages": 1, "totalItems": 1,
		"items": [{"id": "news1", "collectionId": "news", "collectionName": "news", "newsImage": "banner.png"}]
	}`

	authOriginsJSON = `{
		"page": 1, "perPage": 30, "totalPages": 1, "totalItems": 2,
		"items": [
			{"id": "origin-other", "recordRef": "someone-else"},
			{"id": "origin1", "recordRef": "user123"}
		]
	}`
)
