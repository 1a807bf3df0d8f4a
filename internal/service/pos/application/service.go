package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"printexpress/internal/pkg/metrics"
	catalog "printexpress/internal/service/catalog/domain"
	"printexpress/internal/service/pos/domain"
	pricing "printexpress/internal/service/pricing/domain"
)

// SaleLine is one requested line on a walk-in sale. Only the item id and
// quantity come from the counter; prices are always looked up server-side.
type SaleLine struct {
	CatalogItemID int64 `json:"catalog_item_id"`
	Quantity      int   `json:"quantity"`
}

// PosService commits walk-in sales against the catalog.
type PosService struct {
	sales   domain.SaleRepository
	catalog catalog.ItemRepository
	tracer  trace.Tracer
	now     func() time.Time
}

// NewPosService creates the service.
func NewPosService(sales domain.SaleRepository, items catalog.ItemRepository, tracer trace.Tracer, now func() time.Time) *PosService {
	if now == nil {
		now = time.Now
	}
	return &PosService{sales: sales, catalog: items, tracer: tracer, now: now}
}

// CommitSale re-prices every line from the live catalog and persists the
// receipt. The fast path has no cart state: one request, one committed sale.
func (s *PosService) CommitSale(ctx context.Context, staffID string, method domain.PaymentMethod, lines []SaleLine) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "pos.CommitSale")
	defer span.End()
	span.SetAttributes(attribute.String("staff.id", staffID), attribute.Int("lines", len(lines)))

	if len(lines) == 0 {
		return nil, errors.Wrap(pricing.ErrValidation, "sale has no lines")
	}
	if method != domain.PaymentCash && method != domain.PaymentCard {
		return nil, errors.Wrapf(pricing.ErrValidation, "unknown payment method %q", method)
	}

	sale := &domain.Sale{
		ID:            uuid.New().String(),
		StaffID:       staffID,
		PaymentMethod: method,
		CreatedAt:     s.now(),
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, errors.Wrapf(pricing.ErrValidation, "line %d: quantity must be positive", i)
		}
		item, err := s.catalog.FindByID(ctx, line.CatalogItemID)
		if err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, errors.Wrapf(pricing.ErrValidation, "item %q is no longer sold", item.Name)
		}
		lineTotal := pricing.Round2(item.Price * float64(line.Quantity))
		sale.Items = append(sale.Items, domain.SaleItem{
			CatalogItemID: item.ID,
			Name:          item.Name,
			Quantity:      line.Quantity,
			PriceAtSale:   item.Price,
			LineTotal:     lineTotal,
		})
		sale.Total = pricing.Round2(sale.Total + lineTotal)
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	metrics.PosSales.Inc()
	return sale, nil
}

// Sales lists recent receipts, newest first.
func (s *PosService) Sales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.sales.List(ctx, limit)
}
