package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"printexpress/internal/service/order/domain"
	"printexpress/internal/service/order/port"
	pricing "printexpress/internal/service/pricing/domain"
	promotion "printexpress/internal/service/promotion/domain"
	wallet "printexpress/internal/service/wallet/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeOrderRepo struct {
	orders   map[string]domain.Order
	failNext bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if r.failNext {
		r.failNext = false
		return errors.New("database unavailable")
	}
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	dup := o
	return &dup, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	if r.failNext {
		r.failNext = false
		return errors.New("database unavailable")
	}
	if _, ok := r.orders[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

type fakeRules struct{ rules pricing.PricingRuleSet }

func (f *fakeRules) Current(ctx context.Context) (pricing.PricingRuleSet, error) { return f.rules, nil }
func (f *fakeRules) Replace(ctx context.Context, rs pricing.PricingRuleSet) (pricing.PricingRuleSet, error) {
	f.rules = rs
	return rs, nil
}

type fakeCoupons struct {
	coupon   *pricing.Coupon
	consumed []string
}

func (f *fakeCoupons) ResolveCoupon(ctx context.Context, code string, fact promotion.Fact) (*pricing.Coupon, string, error) {
	if f.coupon != nil && f.coupon.Code == code {
		c := *f.coupon
		return &c, "", nil
	}
	return nil, "coupon not found", nil
}

func (f *fakeCoupons) ConsumeCoupon(ctx context.Context, code string) error {
	f.consumed = append(f.consumed, code)
	if f.coupon != nil && f.coupon.Code == code {
		f.coupon.UsedCount++
	}
	return nil
}

type fakeWallet struct {
	balances map[string]float64
	entries  []wallet.LedgerEntry
}

func (f *fakeWallet) Debit(ctx context.Context, userID string, amount float64, orderID, ref string) error {
	if f.balances[userID] < amount {
		return wallet.ErrInsufficientFunds
	}
	f.balances[userID] -= amount
	f.entries = append(f.entries, wallet.LedgerEntry{UserID: userID, Amount: -amount, OrderID: orderID, Reference: ref})
	return nil
}

func (f *fakeWallet) Credit(ctx context.Context, userID string, amount float64, orderID, ref string) error {
	f.balances[userID] += amount
	f.entries = append(f.entries, wallet.LedgerEntry{UserID: userID, Amount: amount, OrderID: orderID, Reference: ref})
	return nil
}

type fakeGateway struct {
	fail  bool
	links []string
}

func (f *fakeGateway) CreatePaymentLink(ctx context.Context, amount float64, ref string) (string, error) {
	if f.fail {
		return "", port.ErrExternalService
	}
	url := fmt.Sprintf("https://pay.example/%s?amount=%.2f", ref, amount)
	f.links = append(f.links, url)
	return url, nil
}

type fakeLock struct{ locked, unlocked int }

func (l *fakeLock) Lock() error   { l.locked++; return nil }
func (l *fakeLock) Unlock() error { l.unlocked++; return nil }

type fakeLockFactory struct{ lock fakeLock }

func (f *fakeLockFactory) NewLock(orderID string) (port.Lock, error) { return &f.lock, nil }

type fakeNotifier struct{ events []port.StatusEvent }

func (f *fakeNotifier) PublishStatusChange(ctx context.Context, ev port.StatusEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fixture struct {
	svc     *OrderService
	orders  *fakeOrderRepo
	wallet  *fakeWallet
	gateway *fakeGateway
	coupons *fakeCoupons
	locks   *fakeLockFactory
	events  *fakeNotifier
}

func newFixture(balances map[string]float64) *fixture {
	if balances == nil {
		balances = make(map[string]float64)
	}
	f := &fixture{
		orders:  newFakeOrderRepo(),
		wallet:  &fakeWallet{balances: balances},
		gateway: &fakeGateway{},
		coupons: &fakeCoupons{},
		locks:   &fakeLockFactory{},
		events:  &fakeNotifier{},
	}
	f.svc = NewOrderService(
		f.orders,
		&fakeRules{rules: pricing.DefaultRuleSet()},
		f.coupons,
		f.wallet,
		f.gateway,
		f.locks,
		f.events,
		otel.Tracer("test"),
		func() time.Time { return testNow },
	)
	return f
}

// 100 bw single-sided pages, pickup: 200 printing + 10 handling = 210.
func baseSpec() pricing.PrintSpec {
	return pricing.PrintSpec{
		Files:       []pricing.FileUnit{{Name: "thesis.pdf", Pages: 100, ColorMode: pricing.ColorModeBW, Sides: pricing.SidesSingle, BindingType: pricing.BindingNone}},
		Fulfillment: pricing.FulfillmentPickup,
	}
}

func TestSubmitWalletOrder(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})

	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", CustomerName: "Asha", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if order.Status != domain.StatusReceived {
		t.Errorf("status = %s, want received", order.Status)
	}
	if order.Channel != domain.ChannelWallet || order.PaymentState != domain.PaymentPaid {
		t.Errorf("channel/payment = %s/%s, want wallet/paid", order.Channel, order.PaymentState)
	}
	if order.Breakdown.Total != 210 {
		t.Errorf("total = %v, want 210", order.Breakdown.Total)
	}
	if got := f.wallet.balances["u1"]; got != 290 {
		t.Errorf("wallet balance = %v, want 290", got)
	}
	if _, ok := f.orders.orders[order.ID]; !ok {
		t.Error("order was not persisted")
	}
	if len(f.events.events) != 1 || f.events.events[0].Event != "submitted" {
		t.Errorf("events = %+v, want one submitted event", f.events.events)
	}
}

func TestSubmitInsufficientFundsSavesNothing(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 50})

	_, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("Submit: got %v, want ErrInsufficientFunds", err)
	}
	if len(f.orders.orders) != 0 {
		t.Error("no order should be persisted on a failed debit")
	}
	if f.wallet.balances["u1"] != 50 {
		t.Errorf("wallet balance = %v, want untouched 50", f.wallet.balances["u1"])
	}
}

func TestSubmitGuestGetsPaymentLink(t *testing.T) {
	f := newFixture(nil)

	order, err := f.svc.Submit(context.Background(), SubmitRequest{CustomerName: "Walk-in", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if order.Channel != domain.ChannelGateway || order.PaymentState != domain.PaymentPending {
		t.Errorf("channel/payment = %s/%s, want gateway/pending", order.Channel, order.PaymentState)
	}
	if order.PaymentRef != "order:"+order.ID {
		t.Errorf("payment ref = %q, want order:%s", order.PaymentRef, order.ID)
	}
	if order.PaymentURL == "" {
		t.Error("guest order should carry a payment link")
	}
	if len(f.wallet.entries) != 0 {
		t.Error("guest order must not touch any wallet")
	}
}

func TestSubmitGuestCannotUseWallet(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec(), Channel: domain.ChannelWallet})
	if !errors.Is(err, pricing.ErrValidation) {
		t.Fatalf("Submit: got %v, want ErrValidation", err)
	}
}

func TestSubmitGatewayDownSavesNothing(t *testing.T) {
	f := newFixture(nil)
	f.gateway.fail = true

	_, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec()})
	if !errors.Is(err, port.ErrExternalService) {
		t.Fatalf("Submit: got %v, want ErrExternalService", err)
	}
	if len(f.orders.orders) != 0 {
		t.Error("no order should be persisted when the gateway is down")
	}
}

func TestSubmitCompensatesDebitWhenSaveFails(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	f.orders.failNext = true

	if _, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()}); err == nil {
		t.Fatal("Submit should surface the save failure")
	}
	if f.wallet.balances["u1"] != 500 {
		t.Errorf("wallet balance = %v, want 500 after compensation", f.wallet.balances["u1"])
	}
}

func TestRecalculateChargesDeltaToWallet(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// 150 pages: 300 printing + 10 handling = 310, a 100 surcharge.
	bigger := baseSpec()
	bigger.Files[0].Pages = 150
	updated, err := f.svc.Recalculate(context.Background(), order.ID, bigger)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if updated.Breakdown.Total != 310 {
		t.Errorf("total = %v, want 310", updated.Breakdown.Total)
	}
	if got := f.wallet.balances["u1"]; got != 190 {
		t.Errorf("wallet balance = %v, want 190 after the surcharge", got)
	}
	if f.locks.lock.locked == 0 || f.locks.lock.locked != f.locks.lock.unlocked {
		t.Errorf("lock acquired %d released %d, want balanced and nonzero", f.locks.lock.locked, f.locks.lock.unlocked)
	}
	stored := f.orders.orders[order.ID]
	if stored.Spec.Files[0].Pages != 150 {
		t.Errorf("stored spec pages = %d, want 150", stored.Spec.Files[0].Pages)
	}
}

func TestRecalculateRoundTripRestoresTotalAndBalance(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	bigger := baseSpec()
	bigger.Files[0].Pages = 150
	if _, err := f.svc.Recalculate(context.Background(), order.ID, bigger); err != nil {
		t.Fatalf("Recalculate up: %v", err)
	}
	updated, err := f.svc.Recalculate(context.Background(), order.ID, baseSpec())
	if err != nil {
		t.Fatalf("Recalculate back: %v", err)
	}
	if updated.Breakdown.Total != 210 {
		t.Errorf("total = %v, want the original 210 while rules are unchanged", updated.Breakdown.Total)
	}
	if got := f.wallet.balances["u1"]; got != 290 {
		t.Errorf("wallet balance = %v, want 290 after the refund", got)
	}
}

func TestRecalculateFrozenOrderConflicts(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusReady, domain.StatusDelivered, domain.StatusCancelled} {
		f := newFixture(map[string]float64{"u1": 500})
		order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		stored := f.orders.orders[order.ID]
		stored.Status = status
		f.orders.orders[order.ID] = stored

		bigger := baseSpec()
		bigger.Files[0].Pages = 150
		_, err = f.svc.Recalculate(context.Background(), order.ID, bigger)
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("Recalculate %s order: got %v, want ErrConflict", status, err)
		}
		if f.orders.orders[order.ID].Spec.Files[0].Pages != 100 {
			t.Errorf("%s order spec must not change", status)
		}
		if f.wallet.balances["u1"] != 290 {
			t.Errorf("wallet balance = %v, want untouched 290", f.wallet.balances["u1"])
		}
	}
}

func TestRecalculateInsufficientFundsLeavesOrderUnchanged(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 210})
	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	bigger := baseSpec()
	bigger.Files[0].Pages = 150
	_, err = f.svc.Recalculate(context.Background(), order.ID, bigger)
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("Recalculate: got %v, want ErrInsufficientFunds", err)
	}
	if f.orders.orders[order.ID].Breakdown.Total != 210 {
		t.Error("breakdown must stay at the original total when the surcharge fails")
	}
}

func TestRecalculateKeepsOwnCouponAtUsageLimit(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	f.coupons.coupon = &pricing.Coupon{
		Code:         "ONCE",
		DiscountType: pricing.DiscountPercent,
		Value:        10,
		ExpiresAt:    testNow.Add(24 * time.Hour),
		UsageLimit:   1,
	}
	spec := baseSpec()
	spec.CouponCode = "ONCE"

	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: spec})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if order.Breakdown.Total != 189 {
		t.Fatalf("total = %v, want 189", order.Breakdown.Total)
	}

	// The order's own submission exhausted the coupon; re-pricing an
	// unchanged spec must not lose the discount it already earned.
	updated, err := f.svc.Recalculate(context.Background(), order.ID, spec)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if updated.Breakdown.Total != 189 || updated.Breakdown.Discount != 21 {
		t.Errorf("breakdown = %+v, want the original 189 with discount 21", updated.Breakdown)
	}
	if got := f.wallet.balances["u1"]; got != 311 {
		t.Errorf("wallet balance = %v, want unchanged 311", got)
	}
	if len(f.coupons.consumed) != 1 {
		t.Errorf("consumed = %v, want the single submission use", f.coupons.consumed)
	}
}

func TestRecalculateConsumesNewlyAddedCoupon(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f.coupons.coupon = &pricing.Coupon{
		Code:         "SAVE10",
		DiscountType: pricing.DiscountPercent,
		Value:        10,
		ExpiresAt:    testNow.Add(24 * time.Hour),
		UsageLimit:   10,
	}
	spec := baseSpec()
	spec.CouponCode = "SAVE10"
	updated, err := f.svc.Recalculate(context.Background(), order.ID, spec)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if updated.Breakdown.Total != 189 {
		t.Errorf("total = %v, want 189 with the coupon applied", updated.Breakdown.Total)
	}
	if got := f.wallet.balances["u1"]; got != 311 {
		t.Errorf("wallet balance = %v, want 311 after the 21 refund", got)
	}
	if len(f.coupons.consumed) != 1 || f.coupons.consumed[0] != "SAVE10" {
		t.Errorf("consumed = %v, want [SAVE10]", f.coupons.consumed)
	}
}

func TestRecalculatePaidGatewayOrderCollectsDeltaViaOwnLink(t *testing.T) {
	f := newFixture(nil)
	order, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.svc.ConfirmPayment(context.Background(), order.ID, 210); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	bigger := baseSpec()
	bigger.Files[0].Pages = 150
	updated, err := f.svc.Recalculate(context.Background(), order.ID, bigger)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if updated.PaymentState != domain.PaymentPending {
		t.Errorf("payment state = %s, want pending until the surcharge lands", updated.PaymentState)
	}
	if updated.AmountPaid != 210 {
		t.Errorf("amount paid = %v, want the 210 already collected", updated.AmountPaid)
	}
	if updated.PaymentRef != domain.DeltaPaymentRef(order.ID) {
		t.Errorf("payment ref = %q, want %q", updated.PaymentRef, domain.DeltaPaymentRef(order.ID))
	}
	if !strings.Contains(updated.PaymentURL, "order-delta:") {
		t.Errorf("payment url = %q, want a surcharge link", updated.PaymentURL)
	}

	if err := f.svc.ConfirmDeltaPayment(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("ConfirmDeltaPayment: %v", err)
	}
	stored := f.orders.orders[order.ID]
	if stored.PaymentState != domain.PaymentPaid || stored.AmountPaid != 310 {
		t.Errorf("payment = %s/%v, want paid/310", stored.PaymentState, stored.AmountPaid)
	}

	// Redelivery of the surcharge confirmation is a no-op.
	if err := f.svc.ConfirmDeltaPayment(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("ConfirmDeltaPayment replay: %v", err)
	}
	confirmed := 0
	for _, ev := range f.events.events {
		if ev.Event == "payment_confirmed" {
			confirmed++
		}
	}
	if confirmed != 2 {
		t.Errorf("payment_confirmed events = %d, want base + surcharge only", confirmed)
	}
}

func TestConfirmDeltaPaymentRejectsShortAmount(t *testing.T) {
	f := newFixture(nil)
	order, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.svc.ConfirmPayment(context.Background(), order.ID, 210); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	bigger := baseSpec()
	bigger.Files[0].Pages = 150
	if _, err := f.svc.Recalculate(context.Background(), order.ID, bigger); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	err = f.svc.ConfirmDeltaPayment(context.Background(), order.ID, 50)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ConfirmDeltaPayment: got %v, want ErrConflict", err)
	}
	stored := f.orders.orders[order.ID]
	if stored.PaymentState != domain.PaymentPending || stored.AmountPaid != 210 {
		t.Errorf("payment = %s/%v, want still pending/210", stored.PaymentState, stored.AmountPaid)
	}
}

func TestCancelRefundsWalletOrder(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if f.wallet.balances["u1"] != 500 {
		t.Errorf("wallet balance = %v, want fully refunded 500", f.wallet.balances["u1"])
	}
}

func TestCancelPaidGuestOrderFlagsRefundDue(t *testing.T) {
	f := newFixture(nil)
	order, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.svc.ConfirmPayment(context.Background(), order.ID, 210); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.PaymentState != domain.PaymentRefundDue {
		t.Errorf("payment state = %s, want refund_due", cancelled.PaymentState)
	}
}

func TestTransitionRejectsSkippedStep(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.svc.Transition(context.Background(), order.ID, domain.StatusDelivered); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Transition: got %v, want ErrConflict", err)
	}
	if _, err := f.svc.Transition(context.Background(), order.ID, domain.StatusPrinting); err != nil {
		t.Fatalf("Transition to printing: %v", err)
	}
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	f := newFixture(nil)
	order, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := f.svc.ConfirmPayment(context.Background(), order.ID, 210); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if err := f.svc.ConfirmPayment(context.Background(), order.ID, 210); err != nil {
		t.Fatalf("ConfirmPayment replay: %v", err)
	}

	confirmed := 0
	for _, ev := range f.events.events {
		if ev.Event == "payment_confirmed" {
			confirmed++
		}
	}
	if confirmed != 1 {
		t.Errorf("payment_confirmed events = %d, want exactly 1", confirmed)
	}
	if f.orders.orders[order.ID].PaymentState != domain.PaymentPaid {
		t.Error("order should be paid")
	}
}

func TestConfirmPaymentRejectsShortPayment(t *testing.T) {
	f := newFixture(nil)
	order, err := f.svc.Submit(context.Background(), SubmitRequest{Spec: baseSpec()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	err = f.svc.ConfirmPayment(context.Background(), order.ID, 100)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ConfirmPayment: got %v, want ErrConflict", err)
	}
	if f.orders.orders[order.ID].PaymentState != domain.PaymentPending {
		t.Error("short payment must leave the order pending")
	}
}

func TestSubmitConsumesResolvedCoupon(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	f.coupons.coupon = &pricing.Coupon{
		Code:         "SAVE10",
		DiscountType: pricing.DiscountPercent,
		Value:        10,
		ExpiresAt:    testNow.Add(24 * time.Hour),
		UsageLimit:   10,
	}
	spec := baseSpec()
	spec.CouponCode = "SAVE10"

	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: spec})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if order.Breakdown.Discount != 21 {
		t.Errorf("discount = %v, want 21 (10%% of 210)", order.Breakdown.Discount)
	}
	if order.Breakdown.Total != 189 {
		t.Errorf("total = %v, want 189", order.Breakdown.Total)
	}
	if len(f.coupons.consumed) != 1 || f.coupons.consumed[0] != "SAVE10" {
		t.Errorf("consumed = %v, want [SAVE10]", f.coupons.consumed)
	}
}

func TestSubmitUnknownCouponDegradesToNoDiscount(t *testing.T) {
	f := newFixture(map[string]float64{"u1": 500})
	spec := baseSpec()
	spec.CouponCode = "NOPE"

	order, err := f.svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Spec: spec})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if order.Breakdown.Discount != 0 || order.Breakdown.Total != 210 {
		t.Errorf("breakdown = %+v, want full price", order.Breakdown)
	}
	if order.Breakdown.CouponRejected == "" {
		t.Error("rejected coupon should carry a reason")
	}
	if len(f.coupons.consumed) != 0 {
		t.Error("a rejected coupon must not be consumed")
	}
}
