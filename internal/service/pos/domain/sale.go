package domain

import (
	"context"
	"time"
)

// PaymentMethod is how a walk-in customer paid at the counter.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// SaleItem is one line on a receipt. PriceAtSale is the catalog price frozen
// at commit time; later catalog edits never change a receipt.
type SaleItem struct {
	CatalogItemID int64   `json:"catalog_item_id"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	PriceAtSale   float64 `json:"price_at_sale"`
	LineTotal     float64 `json:"line_total"`
}

// Sale is one committed walk-in transaction.
type Sale struct {
	ID            string
	StaffID       string
	Items         []SaleItem
	Total         float64
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

// SaleRepository persists committed sales.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	List(ctx context.Context, limit int) ([]Sale, error)
}
