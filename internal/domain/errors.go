package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a create collided with an existing entity.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when an order is placed from a cart without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductUnavailable marks a line whose product is gone or out of stock at checkout.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrUnavailable wraps a storage failure that may clear up on retry.
	ErrUnavailable = errors.New("storage unavailable")
)
