package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"printexpress/internal/pkg/logger"
	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/promotion/domain"
)

// PromotionService resolves coupon codes for the order path and owns the
// usage accounting.
type PromotionService struct {
	couponRepo domain.CouponRepository
	ruleEngine domain.RuleEngine
	tracer     trace.Tracer
}

// NewPromotionService creates the service.
func NewPromotionService(repo domain.CouponRepository, engine domain.RuleEngine, tracer trace.Tracer) *PromotionService {
	return &PromotionService{couponRepo: repo, ruleEngine: engine, tracer: tracer}
}

// ResolveCoupon fetches a coupon by code and evaluates its eligibility rule
// against the order fact. A missing, ineligible or broken coupon resolves to
// (nil, reason) — pricing then proceeds without a discount; only
// infrastructure failures return an error.
func (s *PromotionService) ResolveCoupon(ctx context.Context, code string, fact domain.Fact) (*pricing.Coupon, string, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.ResolveCoupon")
	defer span.End()
	span.SetAttributes(attribute.String("coupon.code", code))

	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			return nil, "coupon not found", nil
		}
		span.RecordError(err)
		return nil, "", err
	}

	if coupon.EligibilityRule != "" {
		eligible, err := s.ruleEngine.Evaluate(coupon.EligibilityRule, fact)
		if err != nil {
			// A broken rule must not break the order.
			span.RecordError(err)
			logger.Ctx(ctx).Warn().Err(err).Str("coupon", code).Msg("eligibility rule evaluation failed")
			return nil, "coupon rule could not be evaluated", nil
		}
		if !eligible {
			return nil, domain.ErrCouponNotEligible.Error(), nil
		}
	}

	return coupon.PricingView(), "", nil
}

// ConsumeCoupon records one successful application of a coupon.
func (s *PromotionService) ConsumeCoupon(ctx context.Context, code string) error {
	ctx, span := s.tracer.Start(ctx, "promotion.ConsumeCoupon")
	defer span.End()
	return s.couponRepo.IncrementUsage(ctx, code)
}
