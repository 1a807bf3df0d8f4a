package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/wallet/domain"
)

// PaymentLinker creates a hosted payment link for a positive amount tied to
// a reference the webhook later echoes back.
type PaymentLinker interface {
	CreatePaymentLink(ctx context.Context, amount float64, ref string) (string, error)
}

// WalletService exposes balance reads, admin adjustments and gateway-backed
// recharges.
type WalletService struct {
	repo    domain.WalletRepository
	gateway PaymentLinker
	tracer  trace.Tracer
}

// NewWalletService creates the service.
func NewWalletService(repo domain.WalletRepository, gateway PaymentLinker, tracer trace.Tracer) *WalletService {
	return &WalletService{repo: repo, gateway: gateway, tracer: tracer}
}

// Balance returns the current balance for a user.
func (s *WalletService) Balance(ctx context.Context, userID string) (float64, error) {
	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Transactions lists recent ledger entries.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	return s.repo.Transactions(ctx, userID, limit)
}

// Add credits a wallet (staff operation).
func (s *WalletService) Add(ctx context.Context, userID string, amount float64, reference string) (float64, error) {
	if amount <= 0 {
		return 0, errors.Wrap(pricing.ErrValidation, "amount must be positive")
	}
	return s.repo.ApplyDelta(ctx, domain.LedgerEntry{
		UserID:    userID,
		Amount:    pricing.Round2(amount),
		Kind:      domain.EntryAdminAdd,
		Reference: reference,
	})
}

// Deduct debits a wallet (staff operation). Surfaces ErrInsufficientFunds.
func (s *WalletService) Deduct(ctx context.Context, userID string, amount float64, reference string) (float64, error) {
	if amount <= 0 {
		return 0, errors.Wrap(pricing.ErrValidation, "amount must be positive")
	}
	return s.repo.ApplyDelta(ctx, domain.LedgerEntry{
		UserID:    userID,
		Amount:    -pricing.Round2(amount),
		Kind:      domain.EntryAdminDeduct,
		Reference: reference,
	})
}

// CreateRechargeSession asks the gateway for a payment link that, once the
// confirmation webhook lands, credits this user's wallet.
func (s *WalletService) CreateRechargeSession(ctx context.Context, userID string, amount float64) (string, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.CreateRechargeSession")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.Float64("amount", amount))

	if amount <= 0 {
		return "", errors.Wrap(pricing.ErrValidation, "recharge amount must be positive")
	}
	ref := fmt.Sprintf("recharge:%s:%s", userID, uuid.New().String())
	return s.gateway.CreatePaymentLink(ctx, pricing.Round2(amount), ref)
}
