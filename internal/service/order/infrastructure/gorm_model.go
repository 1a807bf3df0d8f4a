package infrastructure

import "time"

// OrderModel is the database row for an order. Spec, breakdown and tracking
// are stored as JSON documents; the columns that drive queries (user, status)
// stay relational.
type OrderModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	UserID        string `gorm:"size:64;index"`
	CustomerName  string `gorm:"size:128"`
	CustomerPhone string `gorm:"size:32"`

	Spec      string `gorm:"type:json"`
	Breakdown string `gorm:"type:json"`
	Tracking  string `gorm:"type:json"`

	Status       string `gorm:"size:16;index"`
	Channel      string `gorm:"size:16"`
	PaymentState string `gorm:"size:16"`
	PaymentRef   string `gorm:"size:128"`
	PaymentURL   string `gorm:"size:512"`
	AmountPaid   float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
