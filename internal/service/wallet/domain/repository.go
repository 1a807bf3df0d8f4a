package domain

import "context"

// WalletRepository persists wallet accounts and their ledgers.
type WalletRepository interface {
	// GetAccount returns the account, creating a zero-balance one for
	// reads of unknown users.
	GetAccount(ctx context.Context, userID string) (WalletAccount, error)

	// ApplyDelta atomically applies one signed ledger entry and returns
	// the new balance. Fails with ErrInsufficientFunds when a debit would
	// go below zero, leaving balance and ledger untouched.
	ApplyDelta(ctx context.Context, entry LedgerEntry) (float64, error)

	// Transactions lists a user's ledger entries, newest first.
	Transactions(ctx context.Context, userID string, limit int) ([]LedgerEntry, error)
}
