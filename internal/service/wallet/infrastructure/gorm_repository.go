package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/wallet/domain"
)

// GormWalletRepository is the GORM implementation of WalletRepository.
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates the repository.
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// GetAccount returns the wallet, defaulting to a zero balance for unknown
// users (every customer implicitly owns an empty wallet).
func (r *GormWalletRepository) GetAccount(ctx context.Context, userID string) (domain.WalletAccount, error) {
	var model WalletModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.WalletAccount{UserID: userID, Balance: 0}, nil
	}
	if err != nil {
		return domain.WalletAccount{}, err
	}
	return domain.WalletAccount{UserID: model.UserID, Balance: model.Balance, UpdatedAt: model.UpdatedAt}, nil
}

// ApplyDelta runs the read-check-write under a row lock so the balance cache
// always equals the ledger sum. Credits create missing accounts; a debit
// that would go negative rolls the whole entry back.
func (r *GormWalletRepository) ApplyDelta(ctx context.Context, entry domain.LedgerEntry) (float64, error) {
	var newBalance float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model WalletModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "user_id = ?", entry.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if entry.Amount < 0 {
				return domain.ErrInsufficientFunds
			}
			model = WalletModel{UserID: entry.UserID, Balance: 0}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		next := pricing.Round2(model.Balance + entry.Amount)
		if next < 0 {
			return domain.ErrInsufficientFunds
		}

		if err := tx.Model(&WalletModel{}).Where("user_id = ?", entry.UserID).
			Update("balance", next).Error; err != nil {
			return err
		}
		row := LedgerEntryModel{
			UserID:    entry.UserID,
			Amount:    entry.Amount,
			Kind:      string(entry.Kind),
			OrderID:   entry.OrderID,
			Reference: entry.Reference,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		newBalance = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transactions lists ledger entries newest first.
func (r *GormWalletRepository) Transactions(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []LedgerEntryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LedgerEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			Amount:    row.Amount,
			Kind:      domain.EntryKind(row.Kind),
			OrderID:   row.OrderID,
			Reference: row.Reference,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}
