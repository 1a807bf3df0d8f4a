package infrastructure

import (
	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/promotion/domain"
)

// ToDomainCoupon converts a database model into the domain entity.
func ToDomainCoupon(model *CouponModel) *domain.Coupon {
	if model == nil {
		return nil
	}
	return &domain.Coupon{
		ID:              model.ID,
		Code:            model.Code,
		DiscountType:    pricing.DiscountType(model.DiscountType),
		Value:           model.Value,
		MinOrderValue:   model.MinOrderValue,
		ExpiresAt:       model.ExpiresAt,
		UsageLimit:      model.UsageLimit,
		UsedCount:       model.UsedCount,
		EligibilityRule: model.EligibilityRule,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// FromDomainCoupon converts a domain entity into its database model.
func FromDomainCoupon(dmn *domain.Coupon) *CouponModel {
	if dmn == nil {
		return nil
	}
	return &CouponModel{
		ID:              dmn.ID,
		Code:            dmn.Code,
		DiscountType:    string(dmn.DiscountType),
		Value:           dmn.Value,
		MinOrderValue:   dmn.MinOrderValue,
		ExpiresAt:       dmn.ExpiresAt,
		UsageLimit:      dmn.UsageLimit,
		UsedCount:       dmn.UsedCount,
		EligibilityRule: dmn.EligibilityRule,
	}
}
