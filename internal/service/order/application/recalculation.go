package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"printexpress/internal/pkg/logger"
	"printexpress/internal/pkg/metrics"
	"printexpress/internal/service/order/domain"
	pricing "printexpress/internal/service/pricing/domain"
)

// Recalculate re-prices an order against the live rule set after the
// customer edits the spec, and settles the difference with the order's
// funding channel. Runs entirely under the order lock so two edits, or an
// edit racing a status change, cannot interleave.
//
// The new breakdown floats with the current rules: if rates changed since
// submission, the edited order pays today's prices. An edit that reverts the
// spec therefore lands back on the original total only while the rules are
// unchanged.
func (s *OrderService) Recalculate(ctx context.Context, orderID string, newSpec pricing.PrintSpec) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Recalculate")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	var order *domain.Order
	err := s.withLock(orderID, func() error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Editable() {
			return errors.Wrapf(domain.ErrConflict, "order is %s and can no longer be edited", order.Status)
		}

		// The order's own submission already counts against its coupon, so
		// that one use is excluded when re-validating the same code.
		priorCode := ""
		if order.Spec.CouponCode != "" && order.Breakdown.CouponRejected == "" {
			priorCode = order.Spec.CouponCode
		}
		coupon, breakdown, err := s.priceAgainst(ctx, order.UserID, newSpec, priorCode)
		if err != nil {
			return err
		}

		delta := pricing.Round2(breakdown.Total - order.Breakdown.Total)
		span.SetAttributes(attribute.Float64("order.recalc_delta", delta))

		moved, err := s.settleDelta(ctx, order, delta)
		if err != nil {
			return err
		}

		oldSpec, oldBreakdown := order.Spec, order.Breakdown
		order.Spec = newSpec
		order.Breakdown = breakdown
		if err := s.orders.Update(ctx, order); err != nil {
			order.Spec, order.Breakdown = oldSpec, oldBreakdown
			s.compensateDelta(ctx, order, moved)
			return err
		}

		if coupon != nil && coupon.Code != priorCode {
			if err := s.coupons.ConsumeCoupon(ctx, coupon.Code); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("coupon", coupon.Code).Msg("coupon usage increment failed")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Recalculations.Inc()
	s.publish(ctx, order, "recalculated")
	return order, nil
}

// settleDelta moves the price difference through the order's funding channel
// and returns the signed wallet movement it made, so a failed save afterwards
// can be compensated exactly. A positive delta charges the customer, a
// negative one refunds.
func (s *OrderService) settleDelta(ctx context.Context, order *domain.Order, delta float64) (float64, error) {
	if delta == 0 {
		return 0, nil
	}

	if order.Channel == domain.ChannelGateway {
		// Outstanding folds in money already collected, so back-to-back
		// edits before the customer pays keep a single consistent link.
		outstanding := pricing.Round2(order.Breakdown.Total + delta - order.AmountPaid)
		switch {
		case outstanding == 0:
			order.PaymentState = domain.PaymentPaid
			order.PaymentURL = ""
			return 0, nil

		case order.AmountPaid == 0:
			// Base link never paid: reissue it for the new total.
			url, err := s.gateway.CreatePaymentLink(ctx, outstanding, domain.OrderPaymentRef(order.ID))
			if err != nil {
				return 0, err
			}
			order.PaymentRef = domain.OrderPaymentRef(order.ID)
			order.PaymentURL = url
			order.PaymentState = domain.PaymentPending
			return 0, nil

		case outstanding > 0:
			// The surcharge carries its own reference so the webhook can
			// settle it against the difference instead of the full total.
			url, err := s.gateway.CreatePaymentLink(ctx, outstanding, domain.DeltaPaymentRef(order.ID))
			if err != nil {
				return 0, err
			}
			order.PaymentRef = domain.DeltaPaymentRef(order.ID)
			order.PaymentURL = url
			order.PaymentState = domain.PaymentPending
			return 0, nil

		case order.UserID != "":
			refund := -outstanding
			if err := s.wallet.Credit(ctx, order.UserID, refund, order.ID, "order edit refund"); err != nil {
				return 0, err
			}
			order.AmountPaid = pricing.Round2(order.AmountPaid + outstanding)
			order.PaymentState = domain.PaymentPaid
			order.PaymentURL = ""
			return -refund, nil

		default:
			// A paid guest order has nowhere to put the refund.
			return 0, errors.Wrap(pricing.ErrValidation, "guest orders cannot be edited below the amount already paid")
		}
	}

	if delta > 0 {
		if err := s.wallet.Debit(ctx, order.UserID, delta, order.ID, "order edit surcharge"); err != nil {
			return 0, err
		}
	} else {
		if err := s.wallet.Credit(ctx, order.UserID, -delta, order.ID, "order edit refund"); err != nil {
			return 0, err
		}
	}
	order.AmountPaid = pricing.Round2(order.AmountPaid + delta)
	return delta, nil
}

// compensateDelta reverses the wallet movement settleDelta reported when the
// order save fails afterwards.
func (s *OrderService) compensateDelta(ctx context.Context, order *domain.Order, moved float64) {
	if moved == 0 {
		return
	}
	var err error
	if moved > 0 {
		err = s.wallet.Credit(ctx, order.UserID, moved, order.ID, "order edit rollback")
	} else {
		err = s.wallet.Debit(ctx, order.UserID, -moved, order.ID, "order edit rollback")
	}
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).Float64("moved", moved).Msg("recalculation compensation failed")
	}
}
