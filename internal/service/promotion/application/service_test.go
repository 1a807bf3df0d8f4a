package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/promotion/domain"
)

type fakeCouponRepo struct {
	coupons map[string]*domain.Coupon
	usage   map[string]int
}

func (f *fakeCouponRepo) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		// Wrapped deliberately: the sentinel must be matched with
		// errors.Is, not equality.
		return nil, fmt.Errorf("coupon %s: %w", code, domain.ErrCouponNotFound)
	}
	return c, nil
}

func (f *fakeCouponRepo) Save(ctx context.Context, c *domain.Coupon) error {
	f.coupons[c.Code] = c
	return nil
}

func (f *fakeCouponRepo) IncrementUsage(ctx context.Context, code string) error {
	f.usage[code]++
	return nil
}

type fakeEngine struct {
	result bool
	err    error
}

func (f *fakeEngine) Evaluate(rule string, fact domain.Fact) (bool, error) {
	return f.result, f.err
}

func newPromoFixture(engine *fakeEngine) (*PromotionService, *fakeCouponRepo) {
	repo := &fakeCouponRepo{
		coupons: map[string]*domain.Coupon{
			"SAVE10": {
				Code:            "SAVE10",
				DiscountType:    pricing.DiscountPercent,
				Value:           10,
				ExpiresAt:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
				EligibilityRule: "total_pages >= 10",
			},
		},
		usage: make(map[string]int),
	}
	return NewPromotionService(repo, engine, otel.Tracer("test")), repo
}

func TestResolveCouponEligible(t *testing.T) {
	svc, _ := newPromoFixture(&fakeEngine{result: true})

	coupon, reason, err := svc.ResolveCoupon(context.Background(), "SAVE10", domain.Fact{TotalPages: 50})
	if err != nil {
		t.Fatalf("ResolveCoupon: %v", err)
	}
	if coupon == nil || coupon.Code != "SAVE10" {
		t.Fatalf("coupon = %+v, want SAVE10 view", coupon)
	}
	if reason != "" {
		t.Errorf("reason = %q, want empty", reason)
	}
}

func TestResolveCouponNotFoundDegrades(t *testing.T) {
	svc, _ := newPromoFixture(&fakeEngine{result: true})

	coupon, reason, err := svc.ResolveCoupon(context.Background(), "NOPE", domain.Fact{})
	if err != nil {
		t.Fatalf("ResolveCoupon: %v", err)
	}
	if coupon != nil || reason == "" {
		t.Errorf("got (%+v, %q), want nil coupon with a reason", coupon, reason)
	}
}

func TestResolveCouponIneligibleDegrades(t *testing.T) {
	svc, _ := newPromoFixture(&fakeEngine{result: false})

	coupon, reason, err := svc.ResolveCoupon(context.Background(), "SAVE10", domain.Fact{TotalPages: 2})
	if err != nil {
		t.Fatalf("ResolveCoupon: %v", err)
	}
	if coupon != nil || reason == "" {
		t.Errorf("got (%+v, %q), want nil coupon with a reason", coupon, reason)
	}
}

func TestResolveCouponBrokenRuleDegrades(t *testing.T) {
	svc, _ := newPromoFixture(&fakeEngine{err: errors.New("no such variable")})

	coupon, reason, err := svc.ResolveCoupon(context.Background(), "SAVE10", domain.Fact{})
	if err != nil {
		t.Fatalf("a broken rule must not fail the order, got: %v", err)
	}
	if coupon != nil || reason == "" {
		t.Errorf("got (%+v, %q), want nil coupon with a reason", coupon, reason)
	}
}

func TestConsumeCouponCountsUsage(t *testing.T) {
	svc, repo := newPromoFixture(&fakeEngine{result: true})

	if err := svc.ConsumeCoupon(context.Background(), "SAVE10"); err != nil {
		t.Fatalf("ConsumeCoupon: %v", err)
	}
	if repo.usage["SAVE10"] != 1 {
		t.Errorf("usage = %d, want 1", repo.usage["SAVE10"])
	}
}
