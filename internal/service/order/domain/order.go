package domain

import (
	"time"

	"github.com/pkg/errors"

	pricing "printexpress/internal/service/pricing/domain"
)

// Status is an order's position in the shop workflow.
type Status string

const (
	StatusReceived  Status = "received"
	StatusPrinting  Status = "printing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions is the allowed forward edge set. Delivered and cancelled are
// terminal; once an order is ready the work is done and it can no longer be
// cancelled, only handed over.
var transitions = map[Status][]Status{
	StatusReceived: {StatusPrinting, StatusCancelled},
	StatusPrinting: {StatusReady, StatusCancelled},
	StatusReady:    {StatusDelivered},
}

// FundingChannel is where an order's money comes from.
type FundingChannel string

const (
	// ChannelWallet settles against the customer's prepaid coin balance.
	ChannelWallet FundingChannel = "wallet"
	// ChannelGateway settles through a hosted payment link.
	ChannelGateway FundingChannel = "gateway"
)

// PaymentState tracks whether the order's money has actually arrived.
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentPaid      PaymentState = "paid"
	PaymentRefundDue PaymentState = "refund_due"
)

// TrackingDetails is the delivery progress staff record on an order.
type TrackingDetails struct {
	Carrier        string    `json:"carrier,omitempty"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Order is the aggregate for one print job. Spec and Breakdown are the
// snapshot taken at submission; they only change together through a
// recalculation, never independently.
type Order struct {
	ID            string
	UserID        string // empty for guest orders
	CustomerName  string
	CustomerPhone string

	Spec      pricing.PrintSpec
	Breakdown pricing.PriceBreakdown

	Status       Status
	Channel      FundingChannel
	PaymentState PaymentState
	PaymentRef   string
	PaymentURL   string
	// AmountPaid is the money actually collected so far. It trails
	// Breakdown.Total while a recalculation surcharge is outstanding.
	AmountPaid float64

	Tracking TrackingDetails

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderPaymentRef is the gateway reference for an order's base payment.
func OrderPaymentRef(orderID string) string { return "order:" + orderID }

// DeltaPaymentRef is the gateway reference for a recalculation surcharge. It
// carries its own kind so the webhook settles it against the outstanding
// difference instead of the full total.
func DeltaPaymentRef(orderID string) string { return "order-delta:" + orderID }

// Outstanding is the part of the current total not yet collected.
func (o *Order) Outstanding() float64 {
	return pricing.Round2(o.Breakdown.Total - o.AmountPaid)
}

// IsTerminal reports whether the order can never change again.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// Guest reports whether the order has no account attached.
func (o *Order) Guest() bool { return o.UserID == "" }

// Editable reports whether the spec may still be replaced. Once printing has
// finished the snapshot is frozen.
func (o *Order) Editable() bool {
	return o.Status == StatusReceived || o.Status == StatusPrinting
}

// TransitionTo moves the order to the next status, rejecting anything the
// workflow does not allow with ErrConflict.
func (o *Order) TransitionTo(next Status) error {
	for _, allowed := range transitions[o.Status] {
		if allowed == next {
			o.Status = next
			return nil
		}
	}
	return errors.Wrapf(ErrConflict, "cannot move order from %s to %s", o.Status, next)
}

// ValidStatus reports whether s names a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusReceived, StatusPrinting, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
