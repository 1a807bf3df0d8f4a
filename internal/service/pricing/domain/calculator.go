package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
)

// ColorMode is the print color selection for one file unit.
type ColorMode string

// Sides is the side mode for one file unit.
type Sides string

// BindingType is the binding selection for one file unit.
type BindingType string

// Fulfillment is how the finished order reaches the customer.
type Fulfillment string

const (
	ColorModeBW    ColorMode = "bw"
	ColorModeColor ColorMode = "color"

	SidesSingle Sides = "single"
	SidesDouble Sides = "double"

	BindingNone   BindingType = "none"
	BindingSpiral BindingType = "spiral"
	BindingHard   BindingType = "hard"
	BindingChart  BindingType = "chart"

	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// FileUnit is one uploaded file with its print options.
type FileUnit struct {
	Name        string      `json:"name"`
	Pages       int         `json:"pages"`
	ColorMode   ColorMode   `json:"color_mode"`
	Sides       Sides       `json:"sides"`
	BindingType BindingType `json:"binding_type"`
}

// PrintSpec is everything a customer asked to have printed, plus the
// order-level fulfillment choice and an optional coupon code.
type PrintSpec struct {
	Files       []FileUnit  `json:"files"`
	Fulfillment Fulfillment `json:"fulfillment"`
	CouponCode  string      `json:"coupon_code,omitempty"`
}

// TotalPages sums pages across all file units.
func (s PrintSpec) TotalPages() int {
	total := 0
	for _, f := range s.Files {
		total += f.Pages
	}
	return total
}

// Validate rejects specs the calculator cannot price.
func (s PrintSpec) Validate() error {
	if len(s.Files) == 0 {
		return errors.Wrap(ErrValidation, "spec has no files")
	}
	if s.Fulfillment != FulfillmentPickup && s.Fulfillment != FulfillmentDelivery {
		return errors.Wrapf(ErrValidation, "unknown fulfillment %q", s.Fulfillment)
	}
	for i, f := range s.Files {
		if f.Pages <= 0 {
			return errors.Wrapf(ErrValidation, "file %d: pages must be positive", i)
		}
		if f.ColorMode != ColorModeBW && f.ColorMode != ColorModeColor {
			return errors.Wrapf(ErrValidation, "file %d: unknown color mode %q", i, f.ColorMode)
		}
		if f.Sides != SidesSingle && f.Sides != SidesDouble {
			return errors.Wrapf(ErrValidation, "file %d: unknown sides %q", i, f.Sides)
		}
		switch f.BindingType {
		case BindingNone, BindingSpiral, BindingHard, BindingChart:
		default:
			return errors.Wrapf(ErrValidation, "file %d: unknown binding type %q", i, f.BindingType)
		}
	}
	return nil
}

// Coupon is the read-only view of a coupon the calculator needs. The
// promotion service owns the full entity and projects it into this shape.
type Coupon struct {
	Code          string
	DiscountType  DiscountType
	Value         float64
	MinOrderValue float64
	ExpiresAt     time.Time
	UsageLimit    int
	UsedCount     int
}

// DiscountType selects between percentage and flat discounts.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

// PriceBreakdown is the itemized cost snapshot stored on an order.
type PriceBreakdown struct {
	PrintingSubtotal float64 `json:"printing_subtotal"`
	BindingCharges   float64 `json:"binding_charges"`
	HandlingFee      float64 `json:"handling_fee"`
	DeliveryCharge   float64 `json:"delivery_charge"`
	Discount         float64 `json:"discount"`
	Total            float64 `json:"total"`

	// CouponRejected carries the reason a submitted coupon yielded no
	// discount. A rejected coupon never fails the calculation.
	CouponRejected string `json:"coupon_rejected,omitempty"`
	RuleSetVersion int64  `json:"rule_set_version"`
}

// Round2 rounds a monetary amount half-up to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate prices a print spec against a rule set. Pure: no I/O, no clock
// reads (the caller supplies now for coupon expiry), same inputs always give
// the same breakdown. Fails only on malformed input.
func Calculate(spec PrintSpec, rules PricingRuleSet, coupon *Coupon, now time.Time) (PriceBreakdown, error) {
	if err := spec.Validate(); err != nil {
		return PriceBreakdown{}, err
	}
	if err := rules.Validate(); err != nil {
		return PriceBreakdown{}, errors.Wrap(err, "rule set")
	}

	var b PriceBreakdown
	b.RuleSetVersion = rules.Version

	for _, f := range spec.Files {
		rate := rules.Printing.BW
		if f.ColorMode == ColorModeColor {
			rate = rules.Printing.Color
		}
		perPage := rate.Single
		if f.Sides == SidesDouble {
			perPage = rate.Double
		}
		b.PrintingSubtotal += float64(f.Pages) * perPage

		switch f.BindingType {
		case BindingSpiral:
			b.BindingCharges += rules.Additional.Binding
		case BindingHard:
			b.BindingCharges += rules.Additional.HardBinding
		case BindingChart:
			b.BindingCharges += rules.Additional.ChartBinding
		}
	}
	b.PrintingSubtotal = Round2(b.PrintingSubtotal)
	b.BindingCharges = Round2(b.BindingCharges)

	// Handling is charged once per order, never per file.
	b.HandlingFee = Round2(rules.Additional.HandlingFee)

	if spec.Fulfillment == FulfillmentDelivery {
		b.DeliveryCharge = Round2(rules.DeliveryCharge(spec.TotalPages()))
	}

	preDiscount := Round2(b.PrintingSubtotal + b.BindingCharges + b.HandlingFee + b.DeliveryCharge)

	if coupon != nil {
		discount, reason := applyCoupon(coupon, preDiscount, now)
		b.Discount = discount
		b.CouponRejected = reason
	}

	b.Total = Round2(math.Max(0, preDiscount-b.Discount))
	return b, nil
}

// applyCoupon validates a coupon against the pre-discount total. Any failed
// check degrades to zero discount with a reason, never an error.
func applyCoupon(c *Coupon, preDiscount float64, now time.Time) (float64, string) {
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return 0, "coupon expired"
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return 0, "coupon usage limit reached"
	}
	if preDiscount < c.MinOrderValue {
		return 0, fmt.Sprintf("order value below coupon minimum of %.2f", c.MinOrderValue)
	}

	switch c.DiscountType {
	case DiscountPercent:
		return Round2(preDiscount * c.Value / 100), ""
	case DiscountFlat:
		return Round2(math.Min(c.Value, preDiscount)), ""
	default:
		return 0, fmt.Sprintf("unknown discount type %q", c.DiscountType)
	}
}
