package adapter

import (
	"context"

	wallet "printexpress/internal/service/wallet/domain"
)

// WalletSettlement settles order money directly against the wallet ledger.
type WalletSettlement struct {
	repo wallet.WalletRepository
}

// NewWalletSettlement creates the adapter.
func NewWalletSettlement(repo wallet.WalletRepository) *WalletSettlement {
	return &WalletSettlement{repo: repo}
}

// Debit charges an order amount from the wallet.
func (a *WalletSettlement) Debit(ctx context.Context, userID string, amount float64, orderID, reference string) error {
	_, err := a.repo.ApplyDelta(ctx, wallet.LedgerEntry{
		UserID:    userID,
		Amount:    -amount,
		Kind:      wallet.EntryOrderPayment,
		OrderID:   orderID,
		Reference: reference,
	})
	return err
}

// Credit refunds an order amount to the wallet.
func (a *WalletSettlement) Credit(ctx context.Context, userID string, amount float64, orderID, reference string) error {
	_, err := a.repo.ApplyDelta(ctx, wallet.LedgerEntry{
		UserID:    userID,
		Amount:    amount,
		Kind:      wallet.EntryOrderRefund,
		OrderID:   orderID,
		Reference: reference,
	})
	return err
}
