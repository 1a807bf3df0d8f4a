package domain

import (
	"time"

	pricing "printexpress/internal/service/pricing/domain"
)

// Coupon is an admin-issued discount code. The calculator only ever sees the
// read-only PricingView projection; the full entity additionally carries the
// usage counter and an optional eligibility rule evaluated before pricing.
type Coupon struct {
	ID            int64
	Code          string
	DiscountType  pricing.DiscountType
	Value         float64
	MinOrderValue float64
	ExpiresAt     time.Time
	UsageLimit    int
	UsedCount     int

	// EligibilityRule is an optional CEL expression over the order fact
	// (page count, fulfillment, user id, amount). Empty means always
	// eligible. Evaluation errors reject the coupon, never the order.
	EligibilityRule string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricingView projects the coupon into the calculator's input shape.
func (c *Coupon) PricingView() *pricing.Coupon {
	return &pricing.Coupon{
		Code:          c.Code,
		DiscountType:  c.DiscountType,
		Value:         c.Value,
		MinOrderValue: c.MinOrderValue,
		ExpiresAt:     c.ExpiresAt,
		UsageLimit:    c.UsageLimit,
		UsedCount:     c.UsedCount,
	}
}

// Fact is the order context a coupon eligibility rule is evaluated against.
type Fact struct {
	UserID      string  `json:"user_id"`
	TotalPages  int     `json:"total_pages"`
	Fulfillment string  `json:"fulfillment"`
	OrderAmount float64 `json:"order_amount"`
}

// RuleEngine evaluates an eligibility rule against a fact.
type RuleEngine interface {
	Evaluate(rule string, fact Fact) (bool, error)
}
