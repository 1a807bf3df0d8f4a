package domain

import (
	"context"
	"errors"
	"time"
)

// Item is one sellable service or product in the shop catalog. Its Price is
// the only authoritative price for POS sales; caller-submitted prices are
// never trusted.
type Item struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       float64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrItemNotFound is returned for unknown or deleted catalog items.
var ErrItemNotFound = errors.New("catalog item not found")

// ItemRepository persists catalog items.
type ItemRepository interface {
	List(ctx context.Context, activeOnly bool) ([]Item, error)
	FindByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
}
