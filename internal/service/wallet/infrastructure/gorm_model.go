package infrastructure

import "time"

// WalletModel is the database row for one user's balance cache.
type WalletModel struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WalletModel) TableName() string {
	return "wallets"
}

// LedgerEntryModel is one signed movement row.
type LedgerEntryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;size:64"`
	Amount    float64
	Kind      string `gorm:"size:32"`
	OrderID   string `gorm:"index;size:64"`
	Reference string `gorm:"size:128"`
	CreatedAt time.Time
}

func (LedgerEntryModel) TableName() string {
	return "wallet_ledger_entries"
}
