package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/wallet/application"
	"printexpress/internal/service/wallet/domain"
)

// WalletHandler exposes wallet operations over HTTP.
type WalletHandler struct {
	service *application.WalletService
}

// NewWalletHandler creates the handler.
func NewWalletHandler(service *application.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// RegisterRoutes registers wallet routes on the mux.
func (h *WalletHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /wallet/balance", h.handleBalance)
	mux.HandleFunc("GET /wallet/transactions", h.handleTransactions)
	mux.HandleFunc("POST /wallet/add", h.handleAdd)
	mux.HandleFunc("POST /wallet/deduct", h.handleDeduct)
	mux.HandleFunc("POST /wallet/recharge", h.handleRecharge)
}

type adjustRequest struct {
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference,omitempty"`
}

func writeWalletError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
	case errors.Is(err, pricing.ErrValidation):
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}

func (h *WalletHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	balance, err := h.service.Balance(ctx, userID)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"user_id": userID, "balance": balance})
}

func (h *WalletHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.service.Transactions(ctx, userID, limit)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *WalletHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	balance, err := h.service.Add(ctx, req.UserID, req.Amount, req.Reference)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"user_id": req.UserID, "balance": balance})
}

func (h *WalletHandler) handleDeduct(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	balance, err := h.service.Deduct(ctx, req.UserID, req.Amount, req.Reference)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"user_id": req.UserID, "balance": balance})
}

func (h *WalletHandler) handleRecharge(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	url, err := h.service.CreateRechargeSession(ctx, req.UserID, req.Amount)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"payment_url": url})
}
