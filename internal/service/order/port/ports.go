package port

import (
	"context"
	"errors"

	pricing "printexpress/internal/service/pricing/domain"
	promotion "printexpress/internal/service/promotion/domain"
)

// ErrExternalService marks failures of dependencies outside this process
// (payment gateway, broker). Handlers map it to 502.
var ErrExternalService = errors.New("external service failure")

// PaymentGateway creates hosted payment links. The reference is echoed back
// by the confirmation webhook and routes the money to an order or a wallet.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, amount float64, ref string) (string, error)
}

// CouponService resolves coupon codes against an order fact and records
// successful uses. The promotion application service satisfies this.
type CouponService interface {
	ResolveCoupon(ctx context.Context, code string, fact promotion.Fact) (*pricing.Coupon, string, error)
	ConsumeCoupon(ctx context.Context, code string) error
}

// WalletFunds moves money on a customer wallet for order settlement.
type WalletFunds interface {
	// Debit charges amount (positive) from the wallet, tagged with the
	// order id. Surfaces the wallet's insufficient-funds error unchanged.
	Debit(ctx context.Context, userID string, amount float64, orderID, reference string) error
	// Credit refunds amount (positive) to the wallet.
	Credit(ctx context.Context, userID string, amount float64, orderID, reference string) error
}

// StatusEvent is the message published whenever an order changes.
type StatusEvent struct {
	OrderID   string  `json:"order_id"`
	UserID    string  `json:"user_id,omitempty"`
	Status    string  `json:"status"`
	Total     float64 `json:"total"`
	Event     string  `json:"event"` // submitted | status_changed | recalculated | payment_confirmed | cancelled
	Timestamp int64   `json:"timestamp"`
}

// NotificationProducer publishes order status events for downstream
// consumers (push gateway, messaging). Publish failures are logged, never
// surfaced to the customer.
type NotificationProducer interface {
	PublishStatusChange(ctx context.Context, event StatusEvent) error
}

// Lock is a held mutual exclusion on one order.
type Lock interface {
	Lock() error
	Unlock() error
}

// LockFactory hands out per-order locks. Every read-modify-write on an order
// runs inside one.
type LockFactory interface {
	NewLock(orderID string) (Lock, error)
}
