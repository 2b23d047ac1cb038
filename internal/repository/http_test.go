package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/fjod/matule/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_GetProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/collections/products/records", respond(http.StatusOK, productsListJSON))
	repo := NewHTTPProductRepository(setupAPI(t, mux))

	items, ok := repo.GetProducts(context.Background()).Data()
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "prod1", items[0].ID)
	assert.Equal(t, "Top", items[0].TypeCloses)
}

func TestProductRepository_GetProductByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/collections/products/records/prod1", respond(http.StatusOK, productDetailJSON))
	repo := NewHTTPProductRepository(setupAPI(t, mux))

	product, ok := repo.GetProductByID(context.Background(), "prod1").Data()
	require.True(t, ok)
	assert.Equal(t, "Cotton t-shirt", product.Description)
	assert.Equal(t, "1500 ₽", product.ApproximateCost)
}

func TestProductRepository_SearchSendsFilter(t *testing.T) {
	mux := http.NewServeMux()
	var filter string
	mux.HandleFunc("GET /api/collections/products/records", func(w http.ResponseWriter, r *http.Request) {
		filter = r.URL.Query().Get("filter")
		respond(http.StatusOK, productsListJSON)(w, r)
	})
	repo := NewHTTPProductRepository(setupAPI(t, mux))

	result := repo.SearchProducts(context.Background(), "shirt")
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "(title ?~ 'shirt')", filter)
}

func TestTitleFilter_EscapesQuotes(t *testing.T) {
	assert.Equal(t, `(title ?~ 'men\'s')`, TitleFilter("men's"))
	assert.Equal(t, `(title ?~ 'a\\b')`, TitleFilter(`a\b`))
}

func TestProductRepository_GetNews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/collections/news/records", respond(http.StatusOK, newsListJSON))
	repo := NewHTTPProductRepository(setupAPI(t, mux))

	news, ok := repo.GetNews(context.Background()).Data()
	require.True(t, ok)
	require.Len(t, news, 1)
	assert.Equal(t, "banner.png", news[0].NewsImage)
}

func TestProductRepository_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/collections/products/records", respond(http.StatusInternalServerError, "upstream exploded"))
	repo := NewHTTPProductRepository(setupAPI(t, mux))

	result := repo.GetProducts(context.Background())
	msg, _ := result.ErrorMessage()
	code, _ := result.Code()
	assert.Equal(t, "upstream exploded", msg)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestCartRepository_AddToCart(t *testing.T) {
	mux := http.NewServeMux()
	var req network.RequestCart
	mux.HandleFunc("POST /api/collections/cart/records", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		respond(http.StatusOK, cartItemJSON)(w, r)
	})
	repo := NewHTTPCartRepository(setupAPI(t, mux))

	cart, ok := repo.AddToCart(context.Background(), "user123", "prod1", 2).Data()
	require.True(t, ok)
	assert.Equal(t, "cart1", cart.ID)
	assert.Equal(t, network.RequestCart{UserID: "user123", ProductID: "prod1", Count: 2}, req)
}

func TestCartRepository_UpdateCartItem(t *testing.T) {
	mux := http.NewServeMux()
	var count string
	mux.HandleFunc("PATCH /api/collections/cart/records/cart1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		count = r.FormValue("count")
		respond(http.StatusOK, cartItemJSON)(w, r)
	})
	repo := NewHTTPCartRepository(setupAPI(t, mux))

	result := repo.UpdateCartItem(context.Background(), "cart1", "user123", "prod1", 0)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "0", count)
}

func TestCartRepository_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/collections/cart/records", respond(http.StatusBadRequest, errorJSON))
	repo := NewHTTPCartRepository(setupAPI(t, mux))

	msg, _ := repo.AddToCart(context.Background(), "user123", "prod1", 1).ErrorMessage()
	assert.Equal(t, "Failed to create record.", msg)
}

func TestOrderRepository_CreateOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/collections/orders/records", respond(http.StatusOK, orderJSON))
	repo := NewHTTPOrderRepository(setupAPI(t, mux))

	order, ok := repo.CreateOrder(context.Background(), "user123", "prod1", 3).Data()
	require.True(t, ok)
	assert.Equal(t, "order1", order.ID)
	assert.Equal(t, 3, order.Count)
}

func TestOrderRepository_EmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/collections/orders/records", respond(http.StatusOK, ""))
	repo := NewHTTPOrderRepository(setupAPI(t, mux))

	msg, _ := repo.CreateOrder(context.Background(), "user123", "prod1", 3).ErrorMessage()
	assert.Equal(t, network.MessageUnknownError, msg)
}

func TestProjectRepository_GetProjects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/collections/project/records", respond(http.StatusOK, projectsListJSON))
	repo := NewHTTPProjectRepository(setupAPI(t, mux))

	projects, ok := repo.GetProjects(context.Background()).Data()
	require.True(t, ok)
	require.Len(t, projects, 1)
	assert.Equal(t, "Description", projects[0].DescriptionSource)
	assert.Equal(t, "user123", projects[0].UserID)
}

func TestProjectRepository_CreateProjectWithImage(t *testing.T) {
	mux := http.NewServeMux()
	var category string
	var image []byte
	mux.HandleFunc("POST /api/collections/project/records", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		category = r.FormValue("category")
		f, _, err := r.FormFile("image")
		require.NoError(t, err)
		image, _ = io.ReadAll(f)
		f.Close()
		respond(http.StatusOK, createdProjectJSON)(w, r)
	})
	repo := NewHTTPProjectRepository(setupAPI(t, mux))

	project, ok := repo.CreateProject(context.Background(),
		network.RequestProject{Title: "New project", Category: "New", UserID: "user123"},
		&network.Image{Name: "cover.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	).Data()
	require.True(t, ok)
	assert.Equal(t, "proj2", project.ID)
	assert.Equal(t, "New", category)
	assert.Equal(t, []byte{0xff, 0xd8}, image)
}
