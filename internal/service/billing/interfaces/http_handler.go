package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"printexpress/internal/service/billing/application"
	"printexpress/internal/service/billing/domain"
	pricing "printexpress/internal/service/pricing/domain"
)

// BillingHandler exposes the notification trail over HTTP.
type BillingHandler struct {
	service *application.BillingService
}

// NewBillingHandler creates the handler.
func NewBillingHandler(service *application.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// RegisterRoutes registers billing routes on the mux.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /billing/log-message", h.handleLog)
	mux.HandleFunc("GET /billing/message-logs", h.handleList)
}

func (h *BillingHandler) handleLog(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p struct {
		OrderID   string `json:"order_id"`
		Channel   string `json:"channel"`
		Recipient string `json:"recipient,omitempty"`
		Body      string `json:"body,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	log, err := h.service.LogMessage(ctx, domain.MessageLog{
		OrderID:   p.OrderID,
		Channel:   p.Channel,
		Recipient: p.Recipient,
		Body:      p.Body,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(log)
}

func (h *BillingHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.service.Messages(ctx, r.URL.Query().Get("order_id"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
