package service

import "github.com/abgdnv/marketplace/internal/product/store"

// ListRequest asks for every product.
type ListRequest struct{}

// GetRequest identifies a product by its path id.
type GetRequest struct {
	ID string
}

// AddRequest carries the product decoded from the request body.
type AddRequest struct {
	Product store.Product
}

// UpdateRequest carries the path id and the replacement product.
type UpdateRequest struct {
	ID      string
	Product store.Product
}

// DeleteRequest identifies the product to remove.
type DeleteRequest struct {
	ID string
}

// Response is the envelope of every handled request.
type Response struct {
	Data any `json:"data"`
}

// Message reports a business outcome that is not a product.
type Message struct {
	Msg string `json:"msg"`
}

// ProductResult wraps a product that was added or updated.
type ProductResult struct {
	Product store.Product `json:"product"`
}

// DeleteResult confirms a removal.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
