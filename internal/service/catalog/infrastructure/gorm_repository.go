package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"printexpress/internal/service/catalog/domain"
)

// ItemModel is the database row for a catalog item.
type ItemModel struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"size:128"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:64;index"`
	Price       float64
	Active      bool `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ItemModel) TableName() string {
	return "catalog_items"
}

// GormItemRepository is the GORM implementation of ItemRepository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates the repository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func toDomainItem(m *ItemModel) *domain.Item {
	return &domain.Item{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainItem(d *domain.Item) *ItemModel {
	return &ItemModel{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		Active:      d.Active,
	}
}

// List returns catalog items, optionally only active ones.
func (r *GormItemRepository) List(ctx context.Context, activeOnly bool) ([]domain.Item, error) {
	q := r.db.WithContext(ctx).Model(&ItemModel{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var rows []ItemModel
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(rows))
	for i := range rows {
		items = append(items, *toDomainItem(&rows[i]))
	}
	return items, nil
}

// FindByID looks an item up by id.
func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	var model ItemModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainItem(&model), nil
}

// Create inserts a new item.
func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	model := fromDomainItem(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	item.ID = model.ID
	return nil
}

// Update saves changes to an existing item.
func (r *GormItemRepository) Update(ctx context.Context, item *domain.Item) error {
	result := r.db.WithContext(ctx).Model(&ItemModel{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"category":    item.Category,
			"price":       item.Price,
			"active":      item.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Delete removes an item.
func (r *GormItemRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&ItemModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
