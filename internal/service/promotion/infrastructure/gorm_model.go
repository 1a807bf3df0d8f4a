package infrastructure

import "time"

// CouponModel is the database representation of a coupon.
type CouponModel struct {
	ID              int64  `gorm:"primaryKey"`
	Code            string `gorm:"uniqueIndex;size:64"`
	DiscountType    string `gorm:"size:16"`
	Value           float64
	MinOrderValue   float64
	ExpiresAt       time.Time `gorm:"default:null"`
	UsageLimit      int
	UsedCount       int
	EligibilityRule string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (CouponModel) TableName() string {
	return "coupons"
}
