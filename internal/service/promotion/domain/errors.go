package domain

import "errors"

var (
	// ErrCouponNotFound is returned when no coupon matches a code.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponNotEligible marks a coupon whose eligibility rule rejected
	// the order fact.
	ErrCouponNotEligible = errors.New("coupon not eligible for this order")
)
