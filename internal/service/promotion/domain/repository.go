package domain

import "context"

// CouponRepository persists coupons. Coupons are created by admins and read
// by the pricing path; only the usage counter is mutated here.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Save(ctx context.Context, coupon *Coupon) error

	// IncrementUsage bumps the usage counter after an order using the
	// coupon has committed.
	IncrementUsage(ctx context.Context, code string) error
}
