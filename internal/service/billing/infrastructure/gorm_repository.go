package infrastructure

import (
	"context"
	"time"

	"gorm.io/gorm"

	"printexpress/internal/service/billing/domain"
)

// MessageLogModel is the database row for one logged notification.
type MessageLogModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"size:36;index"`
	Channel   string `gorm:"size:32"`
	Recipient string `gorm:"size:128"`
	Body      string `gorm:"type:text"`
	CreatedAt time.Time
}

func (MessageLogModel) TableName() string {
	return "message_logs"
}

// GormMessageLogRepository is the GORM implementation of MessageLogRepository.
type GormMessageLogRepository struct {
	db *gorm.DB
}

// NewGormMessageLogRepository creates the repository.
func NewGormMessageLogRepository(db *gorm.DB) *GormMessageLogRepository {
	return &GormMessageLogRepository{db: db}
}

// Append inserts one log record.
func (r *GormMessageLogRepository) Append(ctx context.Context, log *domain.MessageLog) error {
	model := &MessageLogModel{
		OrderID:   log.OrderID,
		Channel:   log.Channel,
		Recipient: log.Recipient,
		Body:      log.Body,
		CreatedAt: log.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	log.ID = model.ID
	return nil
}

// List returns log records, newest first.
func (r *GormMessageLogRepository) List(ctx context.Context, orderID string, limit int) ([]domain.MessageLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Model(&MessageLogModel{})
	if orderID != "" {
		q = q.Where("order_id = ?", orderID)
	}
	var rows []MessageLogModel
	if err := q.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]domain.MessageLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, domain.MessageLog{
			ID:        row.ID,
			OrderID:   row.OrderID,
			Channel:   row.Channel,
			Recipient: row.Recipient,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		})
	}
	return logs, nil
}
