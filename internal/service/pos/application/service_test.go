package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	catalog "printexpress/internal/service/catalog/domain"
	"printexpress/internal/service/pos/domain"
	pricing "printexpress/internal/service/pricing/domain"
)

type fakeItemRepo struct {
	items map[int64]catalog.Item
}

func (f *fakeItemRepo) List(ctx context.Context, activeOnly bool) ([]catalog.Item, error) {
	return nil, nil
}

func (f *fakeItemRepo) FindByID(ctx context.Context, id int64) (*catalog.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return &item, nil
}

func (f *fakeItemRepo) Create(ctx context.Context, item *catalog.Item) error { return nil }
func (f *fakeItemRepo) Update(ctx context.Context, item *catalog.Item) error { return nil }
func (f *fakeItemRepo) Delete(ctx context.Context, id int64) error           { return nil }

type fakeSaleRepo struct {
	sales []domain.Sale
}

func (f *fakeSaleRepo) Create(ctx context.Context, sale *domain.Sale) error {
	f.sales = append(f.sales, *sale)
	return nil
}

func (f *fakeSaleRepo) List(ctx context.Context, limit int) ([]domain.Sale, error) {
	return f.sales, nil
}

func newPosFixture() (*PosService, *fakeSaleRepo) {
	items := &fakeItemRepo{items: map[int64]catalog.Item{
		1: {ID: 1, Name: "Lamination A4", Price: 30, Active: true},
		2: {ID: 2, Name: "Passport Photos", Price: 120.5, Active: true},
		3: {ID: 3, Name: "Fax (retired)", Price: 15, Active: false},
	}}
	sales := &fakeSaleRepo{}
	now := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return NewPosService(sales, items, otel.Tracer("test"), now), sales
}

func TestCommitSalePricesFromCatalog(t *testing.T) {
	svc, repo := newPosFixture()

	sale, err := svc.CommitSale(context.Background(), "staff-1", domain.PaymentCash, []SaleLine{
		{CatalogItemID: 1, Quantity: 3},
		{CatalogItemID: 2, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	if sale.Total != 210.5 {
		t.Errorf("total = %v, want 210.5", sale.Total)
	}
	if sale.Items[0].PriceAtSale != 30 || sale.Items[0].LineTotal != 90 {
		t.Errorf("line 0 = %+v, want catalog price 30 and line total 90", sale.Items[0])
	}
	if len(repo.sales) != 1 {
		t.Errorf("persisted sales = %d, want 1", len(repo.sales))
	}
}

func TestCommitSaleUnknownItem(t *testing.T) {
	svc, _ := newPosFixture()

	_, err := svc.CommitSale(context.Background(), "staff-1", domain.PaymentCash, []SaleLine{{CatalogItemID: 99, Quantity: 1}})
	if !errors.Is(err, catalog.ErrItemNotFound) {
		t.Fatalf("CommitSale: got %v, want ErrItemNotFound", err)
	}
}

func TestCommitSaleRejectsInactiveItem(t *testing.T) {
	svc, _ := newPosFixture()

	_, err := svc.CommitSale(context.Background(), "staff-1", domain.PaymentCash, []SaleLine{{CatalogItemID: 3, Quantity: 1}})
	if !errors.Is(err, pricing.ErrValidation) {
		t.Fatalf("CommitSale: got %v, want ErrValidation", err)
	}
}

func TestCommitSaleRejectsBadInput(t *testing.T) {
	svc, _ := newPosFixture()

	if _, err := svc.CommitSale(context.Background(), "staff-1", domain.PaymentCash, nil); !errors.Is(err, pricing.ErrValidation) {
		t.Errorf("empty sale: got %v, want ErrValidation", err)
	}
	if _, err := svc.CommitSale(context.Background(), "staff-1", "iou", []SaleLine{{CatalogItemID: 1, Quantity: 1}}); !errors.Is(err, pricing.ErrValidation) {
		t.Errorf("bad method: got %v, want ErrValidation", err)
	}
	if _, err := svc.CommitSale(context.Background(), "staff-1", domain.PaymentCash, []SaleLine{{CatalogItemID: 1, Quantity: 0}}); !errors.Is(err, pricing.ErrValidation) {
		t.Errorf("zero quantity: got %v, want ErrValidation", err)
	}
}
