package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"printexpress/internal/pkg/logger"
	"printexpress/internal/pkg/metrics"
	"printexpress/internal/service/order/domain"
	"printexpress/internal/service/order/port"
	pricing "printexpress/internal/service/pricing/domain"
	promotion "printexpress/internal/service/promotion/domain"
)

// SubmitRequest is everything needed to accept a new print order.
type SubmitRequest struct {
	UserID        string
	CustomerName  string
	CustomerPhone string
	Spec          pricing.PrintSpec
	// Channel selects the funding path. Guests must use the gateway.
	Channel domain.FundingChannel
}

// OrderService owns the order lifecycle: submission with snapshot pricing,
// status transitions, tracking, cancellation and payment confirmation.
type OrderService struct {
	orders  domain.OrderRepository
	rules   pricing.RuleSetRepository
	coupons port.CouponService
	wallet  port.WalletFunds
	gateway port.PaymentGateway
	locks   port.LockFactory
	notify  port.NotificationProducer
	tracer  trace.Tracer
	now     func() time.Time
}

// NewOrderService creates the service. now is injectable for tests.
func NewOrderService(
	orders domain.OrderRepository,
	rules pricing.RuleSetRepository,
	coupons port.CouponService,
	walletFunds port.WalletFunds,
	gateway port.PaymentGateway,
	locks port.LockFactory,
	notify port.NotificationProducer,
	tracer trace.Tracer,
	now func() time.Time,
) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		orders:  orders,
		rules:   rules,
		coupons: coupons,
		wallet:  walletFunds,
		gateway: gateway,
		locks:   locks,
		notify:  notify,
		tracer:  tracer,
		now:     now,
	}
}

// Quote prices a spec without creating an order.
func (s *OrderService) Quote(ctx context.Context, userID string, spec pricing.PrintSpec) (pricing.PriceBreakdown, error) {
	ctx, span := s.tracer.Start(ctx, "order.Quote")
	defer span.End()

	_, breakdown, err := s.price(ctx, userID, spec)
	return breakdown, err
}

// price resolves the coupon (if any) and computes the breakdown against the
// live rule set. Returns the resolved coupon so Submit can consume it.
func (s *OrderService) price(ctx context.Context, userID string, spec pricing.PrintSpec) (*pricing.Coupon, pricing.PriceBreakdown, error) {
	return s.priceAgainst(ctx, userID, spec, "")
}

// priceAgainst is price with one adjustment: heldCouponCode names a coupon
// whose usage count already includes the order being re-priced. That one use
// is excluded, so recalculating an unchanged spec keeps its own discount even
// when the coupon has since hit its limit.
func (s *OrderService) priceAgainst(ctx context.Context, userID string, spec pricing.PrintSpec, heldCouponCode string) (*pricing.Coupon, pricing.PriceBreakdown, error) {
	rules, err := s.rules.Current(ctx)
	if err != nil {
		return nil, pricing.PriceBreakdown{}, err
	}
	now := s.now()

	var coupon *pricing.Coupon
	if spec.CouponCode != "" {
		// Eligibility rules may reference the order amount, so price once
		// without the coupon to establish it.
		base, err := pricing.Calculate(spec, rules, nil, now)
		if err != nil {
			return nil, pricing.PriceBreakdown{}, err
		}
		fact := promotion.Fact{
			UserID:      userID,
			TotalPages:  spec.TotalPages(),
			Fulfillment: string(spec.Fulfillment),
			OrderAmount: base.Total,
		}
		resolved, reason, err := s.coupons.ResolveCoupon(ctx, spec.CouponCode, fact)
		if err != nil {
			return nil, pricing.PriceBreakdown{}, err
		}
		coupon = resolved
		if coupon == nil {
			base.CouponRejected = reason
			return nil, base, nil
		}
		if coupon.Code == heldCouponCode && coupon.UsedCount > 0 {
			held := *coupon
			held.UsedCount--
			coupon = &held
		}
	}

	breakdown, err := pricing.Calculate(spec, rules, coupon, now)
	if err != nil {
		return nil, pricing.PriceBreakdown{}, err
	}
	if breakdown.CouponRejected != "" {
		coupon = nil
	}
	return coupon, breakdown, nil
}

// Submit prices a spec, settles the money and persists the order. The
// breakdown stored here is the authoritative snapshot; later rule changes do
// not touch it.
func (s *OrderService) Submit(ctx context.Context, req SubmitRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID), attribute.String("channel", string(req.Channel)))

	if req.Channel == "" {
		req.Channel = domain.ChannelWallet
		if req.UserID == "" {
			req.Channel = domain.ChannelGateway
		}
	}
	if req.Channel == domain.ChannelWallet && req.UserID == "" {
		return nil, errors.Wrap(pricing.ErrValidation, "guest orders must pay through the gateway")
	}
	if req.Channel != domain.ChannelWallet && req.Channel != domain.ChannelGateway {
		return nil, errors.Wrapf(pricing.ErrValidation, "unknown funding channel %q", req.Channel)
	}

	coupon, breakdown, err := s.price(ctx, req.UserID, req.Spec)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Spec:          req.Spec,
		Breakdown:     breakdown,
		Status:        domain.StatusReceived,
		Channel:       req.Channel,
	}

	switch req.Channel {
	case domain.ChannelWallet:
		if err := s.wallet.Debit(ctx, req.UserID, breakdown.Total, order.ID, "order payment"); err != nil {
			return nil, err
		}
		order.PaymentState = domain.PaymentPaid
		order.AmountPaid = breakdown.Total
	case domain.ChannelGateway:
		order.PaymentRef = domain.OrderPaymentRef(order.ID)
		url, err := s.gateway.CreatePaymentLink(ctx, breakdown.Total, order.PaymentRef)
		if err != nil {
			return nil, err
		}
		order.PaymentURL = url
		order.PaymentState = domain.PaymentPending
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// Undo the debit so the customer is not charged for a lost order.
		if order.Channel == domain.ChannelWallet {
			if cerr := s.wallet.Credit(ctx, req.UserID, breakdown.Total, order.ID, "order save failed"); cerr != nil {
				logger.Ctx(ctx).Error().Err(cerr).Str("order_id", order.ID).Msg("compensation credit failed")
			}
		}
		return nil, err
	}

	if coupon != nil {
		if err := s.coupons.ConsumeCoupon(ctx, coupon.Code); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("coupon", coupon.Code).Msg("coupon usage increment failed")
		}
	}

	metrics.OrdersSubmitted.WithLabelValues(string(req.Channel)).Inc()
	s.publish(ctx, order, "submitted")
	return order, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// List returns orders matching the filter, newest first.
func (s *OrderService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, filter)
}

// Transition moves an order to the next workflow status under the order lock.
func (s *OrderService) Transition(ctx context.Context, orderID string, next domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Transition")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID), attribute.String("order.next_status", string(next)))

	if !domain.ValidStatus(next) {
		return nil, errors.Wrapf(pricing.ErrValidation, "unknown status %q", next)
	}
	if next == domain.StatusCancelled {
		return s.Cancel(ctx, orderID)
	}

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.TransitionTo(next); err != nil {
			return err
		}
		order.Tracking.UpdatedAt = s.now()
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order, "status_changed")
	return order, nil
}

// Cancel cancels an order and refunds money already collected. Wallet-funded
// orders and account-holding gateway orders are refunded as wallet credit;
// paid guest orders are flagged refund_due for staff to settle offline.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.TransitionTo(domain.StatusCancelled); err != nil {
			return err
		}
		order.Tracking.UpdatedAt = s.now()
		// Refund whatever was actually collected, which can be less than the
		// total when a recalculation surcharge is still outstanding.
		if order.AmountPaid > 0 {
			if order.UserID != "" {
				if err := s.wallet.Credit(ctx, order.UserID, order.AmountPaid, order.ID, "order cancelled"); err != nil {
					return err
				}
				order.AmountPaid = 0
			} else {
				order.PaymentState = domain.PaymentRefundDue
			}
		}
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order, "cancelled")
	return order, nil
}

// RegeneratePaymentLink issues a fresh checkout link for an unpaid gateway
// order, e.g. after the old one expired.
func (s *OrderService) RegeneratePaymentLink(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.RegeneratePaymentLink")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Channel != domain.ChannelGateway || order.PaymentState != domain.PaymentPending {
			return errors.Wrap(domain.ErrConflict, "order has no pending gateway payment")
		}
		ref := domain.OrderPaymentRef(order.ID)
		if order.AmountPaid > 0 {
			// The base payment landed; what is pending is a surcharge link.
			ref = domain.DeltaPaymentRef(order.ID)
		}
		url, err := s.gateway.CreatePaymentLink(ctx, order.Outstanding(), ref)
		if err != nil {
			return err
		}
		order.PaymentRef = ref
		order.PaymentURL = url
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateTracking records delivery progress on an order. Terminal orders are
// frozen.
func (s *OrderService) UpdateTracking(ctx context.Context, orderID string, tracking domain.TrackingDetails) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateTracking")
	defer span.End()

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsTerminal() {
			return errors.Wrapf(domain.ErrConflict, "order is %s", order.Status)
		}
		tracking.UpdatedAt = s.now()
		order.Tracking = tracking
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPayment marks a gateway order as paid. Called by the webhook after
// idempotency screening; a second confirmation of an already-paid order is a
// no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID string, amount float64) error {
	ctx, span := s.tracer.Start(ctx, "order.ConfirmPayment")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID), attribute.Float64("amount", amount))

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentState == domain.PaymentPaid {
			order = nil
			return nil
		}
		if amount+0.005 < order.Breakdown.Total {
			return errors.Wrapf(domain.ErrConflict, "paid %.2f but order total is %.2f", amount, order.Breakdown.Total)
		}
		order.PaymentState = domain.PaymentPaid
		order.AmountPaid = order.Breakdown.Total
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return err
	}
	if order != nil {
		s.publish(ctx, order, "payment_confirmed")
	}
	return nil
}

// ConfirmDeltaPayment settles the surcharge link issued when a paid gateway
// order was recalculated upwards. The paid amount is checked against the
// outstanding difference, not the full total; a replay after settlement is a
// no-op.
func (s *OrderService) ConfirmDeltaPayment(ctx context.Context, orderID string, amount float64) error {
	ctx, span := s.tracer.Start(ctx, "order.ConfirmDeltaPayment")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID), attribute.Float64("amount", amount))

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		outstanding := order.Outstanding()
		if order.PaymentState == domain.PaymentPaid || outstanding <= 0 {
			order = nil
			return nil
		}
		if amount+0.005 < outstanding {
			return errors.Wrapf(domain.ErrConflict, "paid %.2f but %.2f is outstanding", amount, outstanding)
		}
		order.PaymentState = domain.PaymentPaid
		order.AmountPaid = order.Breakdown.Total
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return err
	}
	if order != nil {
		s.publish(ctx, order, "payment_confirmed")
	}
	return nil
}

func (s *OrderService) withLock(orderID string, fn func() error) error {
	lock, err := s.locks.NewLock(orderID)
	if err != nil {
		return errors.Wrap(err, "acquire order lock")
	}
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "acquire order lock")
	}
	defer lock.Unlock()
	return fn()
}

func (s *OrderService) publish(ctx context.Context, order *domain.Order, event string) {
	err := s.notify.PublishStatusChange(ctx, port.StatusEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    string(order.Status),
		Total:     order.Breakdown.Total,
		Event:     event,
		Timestamp: s.now().Unix(),
	})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Str("event", event).Msg("status notification publish failed")
	}
}
