package domain

import "context"

// ListFilter narrows an order listing. Zero values mean "any".
type ListFilter struct {
	UserID string
	Status Status
	Limit  int
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)
}
