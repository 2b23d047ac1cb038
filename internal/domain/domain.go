// Package domain holds the client-local entities. They are stored as whole
// JSON documents; every change rewrites the full value.
package domain

import "hash/fnv"

// Product is the catalogue entry shown to the user.
type Product struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

// CartItem pairs a product with its quantity. CartItemID is the backend
// record id once the item has been synced.
type CartItem struct {
	Product    Product `json:"product"`
	Quantity   int     `json:"quantity"`
	CartItemID string  `json:"cartItemId,omitempty"`
}

// Synced reports whether the item has a backend record.
func (c CartItem) Synced() bool {
	return c.CartItemID != ""
}

const (
	OrderStatusProcessing      = "Processing"
	OrderStatusPlaced          = "Placed"
	OrderStatusPartiallyPlaced = "Partially placed"
)

type Order struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"`
	TotalPrice string     `json:"totalPrice"`
	Status     string     `json:"status"`
	Items      []CartItem `json:"items"`
	ServerIDs  []string   `json:"serverIds,omitempty"`
}

type Project struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	Recipient         string `json:"recipient"`
	DescriptionSource string `json:"descriptionSource"`
	Category          string `json:"category"`
	ImageURI          string `json:"imageUri,omitempty"`
	// CreatedAt is unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

// ProductID maps a backend record id to the numeric id used locally. The
// mapping is stable across runs.
func ProductID(remoteID string) int {
	h := fnv.New32a()
	h.Write([]byte(remoteID))
	return int(int32(h.Sum32()))
}
