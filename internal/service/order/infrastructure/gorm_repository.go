package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"printexpress/internal/service/order/domain"
)

// GormOrderRepository is the GORM implementation of OrderRepository.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates the repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order.
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := fromDomainOrder(order)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID loads one order.
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainOrder(&model)
}

// Update saves the full order state. Callers serialize through the order
// lock, so a plain overwrite is safe.
func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model, err := fromDomainOrder(order)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"customer_name":  model.CustomerName,
			"customer_phone": model.CustomerPhone,
			"spec":           model.Spec,
			"breakdown":      model.Breakdown,
			"tracking":       model.Tracking,
			"status":         model.Status,
			"payment_state":  model.PaymentState,
			"payment_ref":    model.PaymentRef,
			"payment_url":    model.PaymentURL,
			"amount_paid":    model.AmountPaid,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// List returns orders matching the filter, newest first.
func (r *GormOrderRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&OrderModel{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []OrderModel
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(rows))
	for i := range rows {
		order, err := toDomainOrder(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}
