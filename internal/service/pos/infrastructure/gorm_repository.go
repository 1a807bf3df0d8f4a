package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"printexpress/internal/service/pos/domain"
)

// SaleModel is the database row for a committed sale. The line items are one
// JSON document; receipts are only ever read whole.
type SaleModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	StaffID       string `gorm:"size:64;index"`
	Items         string `gorm:"type:json"`
	Total         float64
	PaymentMethod string `gorm:"size:16"`
	CreatedAt     time.Time
}

func (SaleModel) TableName() string {
	return "pos_sales"
}

// GormSaleRepository is the GORM implementation of SaleRepository.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates the repository.
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts a committed sale.
func (r *GormSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return errors.Wrap(err, "marshal sale items")
	}
	model := &SaleModel{
		ID:            sale.ID,
		StaffID:       sale.StaffID,
		Items:         string(items),
		Total:         sale.Total,
		PaymentMethod: string(sale.PaymentMethod),
		CreatedAt:     sale.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// List returns recent sales, newest first.
func (r *GormSaleRepository) List(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []SaleModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(rows))
	for i := range rows {
		sale := domain.Sale{
			ID:            rows[i].ID,
			StaffID:       rows[i].StaffID,
			Total:         rows[i].Total,
			PaymentMethod: domain.PaymentMethod(rows[i].PaymentMethod),
			CreatedAt:     rows[i].CreatedAt,
		}
		if err := json.Unmarshal([]byte(rows[i].Items), &sale.Items); err != nil {
			return nil, errors.Wrapf(err, "sale %s: corrupt items document", rows[i].ID)
		}
		sales = append(sales, sale)
	}
	return sales, nil
}
