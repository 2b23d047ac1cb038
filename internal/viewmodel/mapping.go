package viewmodel

import (
	"strings"
	"time"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/network"
)

// ProductFromItem maps a backend product to the local model. The list
// endpoint has no description or image.
func ProductFromItem(item network.ProductItem) domain.Product {
	category := item.TypeCloses
	if category == "" {
		category = item.Type
	}
	return domain.Product{
		ID:       domain.ProductID(item.ID),
		Title:    item.Title,
		Price:    item.Price,
		Category: category,
	}
}

func ProductsFromItems(items []network.ProductItem) []domain.Product {
	out := make([]domain.Product, 0, len(items))
	for _, it := range items {
		out = append(out, ProductFromItem(it))
	}
	return out
}

var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04:05",
}

// ProjectFromAPI maps a backend project. filesBaseURL is the root of the
// file endpoint; the image URL is empty when the record has no image.
func ProjectFromAPI(p network.ProjectAPI, filesBaseURL string, now time.Time) domain.Project {
	var image string
	if p.Image != "" {
		image = strings.TrimRight(filesBaseURL, "/") + "/" + p.CollectionID + "/" + p.ID + "/" + p.Image
	}
	return domain.Project{
		ID:                p.ID,
		Name:              p.Title,
		StartDate:         p.DateStart,
		EndDate:           p.DateEnd,
		Recipient:         p.Gender,
		DescriptionSource: p.DescriptionSource,
		Category:          p.Category,
		ImageURI:          image,
		CreatedAt:         parseCreated(p.Created, now).UnixMilli(),
	}
}

// parseCreated falls back to now for timestamps it cannot read.
func parseCreated(s string, now time.Time) time.Time {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}
