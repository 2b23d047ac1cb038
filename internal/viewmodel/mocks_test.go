package viewmodel

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/fjod/matule/internal/domain"
	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// staticUser is a UserIDSource with a fixed id.
type staticUser string

func (s staticUser) UserID() string { return string(s) }

// staticCatalogue is a LocalCatalogue over a fixed list.
type staticCatalogue []domain.Product

func (c staticCatalogue) Products(context.Context) []domain.Product {
	return append([]domain.Product(nil), c...)
}

type mockCategories struct {
	categories []string
	err        error
}

func (m mockCategories) Categories(context.Context) ([]string, error) {
	return m.categories, m.err
}

type mockAuthClearer struct {
	mu    sync.Mutex
	calls int
}

func (m *mockAuthClearer) ClearAuth(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return nil
}

var errStoreDown = errors.New("store down")

var localProducts = staticCatalogue{
	{ID: 1, Title: "Sunday Shirt", Description: "Cotton shirt", Price: 4500, Category: "Men"},
	{ID: 2, Title: "Tuesday Shorts", Description: "Linen shorts", Price: 3200, Category: "Men"},
	{ID: 3, Title: "Silk Scarf", Description: "Light scarf", Price: 2100, Category: "Accessories"},
	{ID: 4, Title: "Summer Dress", Description: "Linen dress", Price: 7800, Category: "Women"},
}
