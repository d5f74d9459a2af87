// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrProductNotFound is returned by stores when no product exists for a key.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidBody is returned when a request body cannot be decoded into a product.
var ErrInvalidBody = errors.New("invalid request body")
