package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"printexpress/internal/service/promotion/domain"
)

// GormCouponRepository is the GORM implementation of CouponRepository.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates the repository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode looks a coupon up by its code.
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}
	return ToDomainCoupon(&model), nil
}

// Save upserts a coupon.
func (r *GormCouponRepository) Save(ctx context.Context, coupon *domain.Coupon) error {
	return r.db.WithContext(ctx).Save(FromDomainCoupon(coupon)).Error
}

// IncrementUsage bumps used_count atomically in the database rather than
// read-modify-writing the entity.
func (r *GormCouponRepository) IncrementUsage(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Model(&CouponModel{}).
		Where("code = ?", code).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}
