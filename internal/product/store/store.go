// Package store provides the key-value storage of products.
package store

import (
	"context"
)

// Product represents a product listed on the marketplace.
// The ID is assigned by the caller and is the only key.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Owner       string `json:"owner"`
}

// ProductStore is a key-value store mapping a product ID to a Product.
// Implementations must be safe for concurrent use.
type ProductStore interface {
	// ContainsKey reports whether a product exists under id.
	ContainsKey(ctx context.Context, id string) (bool, error)

	// Get returns the product stored under id.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Get(ctx context.Context, id string) (*Product, error)

	// Insert stores the product under its ID, replacing any existing value.
	Insert(ctx context.Context, product Product) error

	// Remove deletes the product stored under id and returns it.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Remove(ctx context.Context, id string) (*Product, error)

	// Values returns every stored product ordered by ID.
	// Returns an empty slice if no products exist.
	Values(ctx context.Context) ([]Product, error)
}
