package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"

	"printexpress/internal/pkg/logger"
	"printexpress/internal/service/billing/domain"
	pricing "printexpress/internal/service/pricing/domain"
)

// Publisher forwards a logged message onto the notification topic so live
// dashboards pick it up alongside status events.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// BillingService owns the customer-notification trail.
type BillingService struct {
	logs      domain.MessageLogRepository
	publisher Publisher
	tracer    trace.Tracer
	now       func() time.Time
}

// NewBillingService creates the service.
func NewBillingService(logs domain.MessageLogRepository, publisher Publisher, tracer trace.Tracer, now func() time.Time) *BillingService {
	if now == nil {
		now = time.Now
	}
	return &BillingService{logs: logs, publisher: publisher, tracer: tracer, now: now}
}

// LogMessage appends one notification record and mirrors it onto the
// notification topic. A broker hiccup never loses the database record.
func (s *BillingService) LogMessage(ctx context.Context, log domain.MessageLog) (*domain.MessageLog, error) {
	ctx, span := s.tracer.Start(ctx, "billing.LogMessage")
	defer span.End()

	if log.OrderID == "" || log.Channel == "" {
		return nil, errors.Wrap(pricing.ErrValidation, "order_id and channel are required")
	}
	log.CreatedAt = s.now()
	if err := s.logs.Append(ctx, &log); err != nil {
		return nil, err
	}

	if value, err := json.Marshal(log); err == nil {
		if err := s.publisher.Publish(ctx, []byte(log.OrderID), value); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("order_id", log.OrderID).Msg("message log publish failed")
		}
	}
	return &log, nil
}

// Messages lists the notification trail, optionally narrowed to one order.
func (s *BillingService) Messages(ctx context.Context, orderID string, limit int) ([]domain.MessageLog, error) {
	return s.logs.List(ctx, orderID, limit)
}
