package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func pickupSpec(files ...FileUnit) PrintSpec {
	return PrintSpec{Files: files, Fulfillment: FulfillmentPickup}
}

func TestCalculateSinglePickupOrder(t *testing.T) {
	// 50 bw single-sided pages, no binding, pickup.
	spec := pickupSpec(FileUnit{Name: "notes.pdf", Pages: 50, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})

	b, err := Calculate(spec, DefaultRuleSet(), nil, testNow)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if b.PrintingSubtotal != 100 {
		t.Errorf("printing subtotal = %v, want 100", b.PrintingSubtotal)
	}
	if b.HandlingFee != 10 {
		t.Errorf("handling fee = %v, want 10", b.HandlingFee)
	}
	if b.DeliveryCharge != 0 {
		t.Errorf("delivery charge = %v, want 0 for pickup", b.DeliveryCharge)
	}
	if b.Total != 110 {
		t.Errorf("total = %v, want 110", b.Total)
	}
}

func TestCalculateMultiFileDelivery(t *testing.T) {
	// 30 color double-sided + 20 bw single-sided pages, one spiral binding,
	// delivered. 50 pages lands in tier A.
	spec := PrintSpec{
		Files: []FileUnit{
			{Name: "report.pdf", Pages: 30, ColorMode: ColorModeColor, Sides: SidesDouble, BindingType: BindingSpiral},
			{Name: "appendix.pdf", Pages: 20, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone},
		},
		Fulfillment: FulfillmentDelivery,
	}

	b, err := Calculate(spec, DefaultRuleSet(), nil, testNow)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if b.PrintingSubtotal != 490 {
		t.Errorf("printing subtotal = %v, want 490", b.PrintingSubtotal)
	}
	if b.BindingCharges != 50 {
		t.Errorf("binding charges = %v, want 50", b.BindingCharges)
	}
	if b.DeliveryCharge != 40 {
		t.Errorf("delivery charge = %v, want tier A (40)", b.DeliveryCharge)
	}
	if b.Total != 590 {
		t.Errorf("total = %v, want 590", b.Total)
	}
}

func TestCalculatePercentCoupon(t *testing.T) {
	spec := pickupSpec(FileUnit{Name: "notes.pdf", Pages: 50, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})
	coupon := &Coupon{
		Code:          "SAVE10",
		DiscountType:  DiscountPercent,
		Value:         10,
		MinOrderValue: 100,
		ExpiresAt:     testNow.Add(24 * time.Hour),
		UsageLimit:    100,
	}

	b, err := Calculate(spec, DefaultRuleSet(), coupon, testNow)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if b.Discount != 11 {
		t.Errorf("discount = %v, want 11", b.Discount)
	}
	if b.Total != 99 {
		t.Errorf("total = %v, want 99", b.Total)
	}
	if b.CouponRejected != "" {
		t.Errorf("coupon unexpectedly rejected: %s", b.CouponRejected)
	}
}

func TestCalculateCouponRejections(t *testing.T) {
	spec := pickupSpec(FileUnit{Name: "a.pdf", Pages: 10, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})
	// pre-discount total: 10*2 + 10 = 30

	cases := []struct {
		name   string
		coupon Coupon
	}{
		{"expired", Coupon{Code: "OLD", DiscountType: DiscountPercent, Value: 10, ExpiresAt: testNow.Add(-time.Hour)}},
		{"usage limit reached", Coupon{Code: "BURNT", DiscountType: DiscountPercent, Value: 10, UsageLimit: 5, UsedCount: 5}},
		{"below minimum", Coupon{Code: "BIG", DiscountType: DiscountFlat, Value: 10, MinOrderValue: 100}},
		{"unknown type", Coupon{Code: "ODD", DiscountType: "bogo", Value: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Calculate(spec, DefaultRuleSet(), &tc.coupon, testNow)
			if err != nil {
				t.Fatalf("rejected coupon must not fail the order: %v", err)
			}
			if b.Discount != 0 {
				t.Errorf("discount = %v, want 0", b.Discount)
			}
			if b.CouponRejected == "" {
				t.Error("expected a rejection reason")
			}
			if b.Total != 30 {
				t.Errorf("total = %v, want 30", b.Total)
			}
		})
	}
}

func TestCalculateTotalNeverNegative(t *testing.T) {
	spec := pickupSpec(FileUnit{Name: "a.pdf", Pages: 1, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})
	// pre-discount total: 12; flat coupon worth far more.
	coupon := &Coupon{Code: "HUGE", DiscountType: DiscountFlat, Value: 5000}

	b, err := Calculate(spec, DefaultRuleSet(), coupon, testNow)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if b.Total < 0 {
		t.Errorf("total = %v, must never go negative", b.Total)
	}
	if b.Total != 0 {
		t.Errorf("total = %v, want 0 (flat discount clamped)", b.Total)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	spec := PrintSpec{
		Files: []FileUnit{
			{Name: "r.pdf", Pages: 123, ColorMode: ColorModeColor, Sides: SidesSingle, BindingType: BindingHard},
			{Name: "s.pdf", Pages: 77, ColorMode: ColorModeBW, Sides: SidesDouble, BindingType: BindingChart},
		},
		Fulfillment: FulfillmentDelivery,
	}
	coupon := &Coupon{Code: "C", DiscountType: DiscountPercent, Value: 7.5, ExpiresAt: testNow.Add(time.Hour)}

	first, err := Calculate(spec, DefaultRuleSet(), coupon, testNow)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Calculate(spec, DefaultRuleSet(), coupon, testNow)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		if again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestDeliveryTierBoundaries(t *testing.T) {
	rs := DefaultRuleSet()
	cases := []struct {
		pages int
		want  float64
	}{
		{1, 40},
		{99, 40},
		{100, 40}, // the 100-200 gap resolves to tier A
		{200, 40},
		{201, 60},
		{500, 60},
		{501, 80},
		{999, 80},
		{1000, 150},
		{5000, 150},
	}
	for _, tc := range cases {
		if got := rs.DeliveryCharge(tc.pages); got != tc.want {
			t.Errorf("DeliveryCharge(%d) = %v, want %v", tc.pages, got, tc.want)
		}
	}
}

func TestCalculateValidation(t *testing.T) {
	rs := DefaultRuleSet()
	cases := []struct {
		name string
		spec PrintSpec
	}{
		{"no files", PrintSpec{Fulfillment: FulfillmentPickup}},
		{"zero pages", pickupSpec(FileUnit{Pages: 0, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})},
		{"negative pages", pickupSpec(FileUnit{Pages: -3, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})},
		{"bad color mode", pickupSpec(FileUnit{Pages: 1, ColorMode: "sepia", Sides: SidesSingle, BindingType: BindingNone})},
		{"bad sides", pickupSpec(FileUnit{Pages: 1, ColorMode: ColorModeBW, Sides: "triple", BindingType: BindingNone})},
		{"bad binding", pickupSpec(FileUnit{Pages: 1, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: "staple"})},
		{"bad fulfillment", PrintSpec{Files: []FileUnit{{Pages: 1, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone}}, Fulfillment: "teleport"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Calculate(tc.spec, rs, nil, testNow); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	t.Run("negative rate", func(t *testing.T) {
		bad := DefaultRuleSet()
		bad.Printing.BW.Single = -1
		spec := pickupSpec(FileUnit{Pages: 1, ColorMode: ColorModeBW, Sides: SidesSingle, BindingType: BindingNone})
		if _, err := Calculate(spec, bad, nil, testNow); !errors.Is(err, ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})
}
