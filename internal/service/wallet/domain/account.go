package domain

import "time"

// WalletAccount is one user's coin balance. The balance is an aggregate
// cache: it must always equal the sum of applied ledger deltas, which is why
// every mutation goes through ApplyDelta and nothing else.
type WalletAccount struct {
	UserID    string
	Balance   float64
	UpdatedAt time.Time
}

// EntryKind is the business reason behind a ledger delta.
type EntryKind string

const (
	EntryOrderPayment EntryKind = "order_payment"
	EntryOrderRefund  EntryKind = "order_refund"
	EntryRecalcCharge EntryKind = "recalc_charge"
	EntryRecharge     EntryKind = "recharge"
	EntryAdminAdd     EntryKind = "admin_add"
	EntryAdminDeduct  EntryKind = "admin_deduct"
)

// LedgerEntry is one signed movement on a wallet. Negative amounts debit,
// positive amounts credit.
type LedgerEntry struct {
	ID        int64
	UserID    string
	Amount    float64
	Kind      EntryKind
	OrderID   string
	Reference string
	CreatedAt time.Time
}
