package interfaces

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"printexpress/internal/pkg/logger"
	"printexpress/internal/pkg/metrics"
	pricing "printexpress/internal/service/pricing/domain"
	wallet "printexpress/internal/service/wallet/domain"
)

const (
	signatureHeader = "X-Webhook-Signature"
	// eventKeyTTL bounds how long a processed event id is remembered. The
	// gateway retries for at most a day.
	eventKeyTTL = 24 * time.Hour

	// An event key moves processing -> done; a redelivery racing the first
	// attempt sees processing and is told to retry later instead of being
	// acked for work that might still fail.
	eventStateProcessing = "processing"
	eventStateDone       = "done"
)

// IdempotencyStore remembers processed webhook event ids. The redis client
// satisfies this. Get returns "" for a missing key.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// PaymentConfirmer settles confirmed order payments: the base checkout and
// the surcharge link a recalculation can issue. The order application service
// satisfies this.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, orderID string, amount float64) error
	ConfirmDeltaPayment(ctx context.Context, orderID string, amount float64) error
}

// WebhookHandler receives payment confirmations from the gateway. Deliveries
// are at-least-once, so every event is screened against redis before it can
// move money.
type WebhookHandler struct {
	orders PaymentConfirmer
	wallet wallet.WalletRepository
	store  IdempotencyStore
	secret string
}

// NewWebhookHandler creates the handler. An empty secret disables signature
// verification (local development only).
func NewWebhookHandler(orders PaymentConfirmer, walletRepo wallet.WalletRepository, store IdempotencyStore, secret string) *WebhookHandler {
	return &WebhookHandler{orders: orders, wallet: walletRepo, store: store, secret: secret}
}

// RegisterRoutes registers the webhook endpoint on the mux.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/payment", h.handlePayment)
}

type webhookEvent struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
}

func (h *WebhookHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if h.secret != "" && !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" {
		http.Error(w, "malformed event", http.StatusBadRequest)
		return
	}

	if event.Type != "payment.succeeded" {
		// Acknowledge everything else so the gateway stops retrying.
		w.WriteHeader(http.StatusOK)
		return
	}

	key := "webhook:event:" + event.ID
	first, err := h.store.SetNX(ctx, key, eventStateProcessing, eventKeyTTL)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		http.Error(w, "idempotency check unavailable", http.StatusServiceUnavailable)
		return
	}
	if !first {
		state, err := h.store.Get(ctx, key)
		if err != nil {
			metrics.WebhookEvents.WithLabelValues("failed").Inc()
			http.Error(w, "idempotency check unavailable", http.StatusServiceUnavailable)
			return
		}
		if state != eventStateDone {
			// The first delivery is still in flight and may yet fail; only a
			// finished event is safe to acknowledge.
			http.Error(w, "delivery in progress, retry later", http.StatusConflict)
			return
		}
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		logger.Ctx(ctx).Info().Str("event_id", event.ID).Msg("duplicate webhook delivery ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.apply(ctx, event); err != nil {
		// Release the reservation so the gateway's retry can land.
		if derr := h.store.Del(ctx, key); derr != nil {
			logger.Ctx(ctx).Error().Err(derr).Str("event_id", event.ID).Msg("failed to release webhook event key")
		}
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		logger.Ctx(ctx).Error().Err(err).Str("event_id", event.ID).Str("reference", event.Reference).Msg("webhook event failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.store.Set(ctx, key, eventStateDone, eventKeyTTL); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_id", event.ID).Msg("failed to mark webhook event done")
	}
	metrics.WebhookEvents.WithLabelValues("applied").Inc()
	w.WriteHeader(http.StatusOK)
}

// apply routes the confirmed payment by its reference: "order:<id>" settles
// an order's base payment, "order-delta:<id>" the surcharge from an upward
// recalculation, "recharge:<user>:<nonce>" credits a wallet.
func (h *WebhookHandler) apply(ctx context.Context, event webhookEvent) error {
	kind, rest, ok := strings.Cut(event.Reference, ":")
	if !ok {
		return errors.Errorf("unparseable payment reference %q", event.Reference)
	}
	switch kind {
	case "order":
		return h.orders.ConfirmPayment(ctx, rest, event.Amount)
	case "order-delta":
		return h.orders.ConfirmDeltaPayment(ctx, rest, event.Amount)
	case "recharge":
		userID, nonce, ok := strings.Cut(rest, ":")
		if !ok || userID == "" {
			return errors.Errorf("unparseable recharge reference %q", event.Reference)
		}
		_, err := h.wallet.ApplyDelta(ctx, wallet.LedgerEntry{
			UserID:    userID,
			Amount:    pricing.Round2(event.Amount),
			Kind:      wallet.EntryRecharge,
			Reference: nonce,
		})
		return err
	default:
		return errors.Errorf("unknown payment reference kind %q", kind)
	}
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
