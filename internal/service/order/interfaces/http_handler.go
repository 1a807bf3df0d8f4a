package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"printexpress/internal/service/order/application"
	"printexpress/internal/service/order/domain"
	"printexpress/internal/service/order/port"
	pricing "printexpress/internal/service/pricing/domain"
	wallet "printexpress/internal/service/wallet/domain"
)

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	service *application.OrderService
}

// NewOrderHandler creates the handler.
func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers order routes on the mux.
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders/quote", h.handleQuote)
	mux.HandleFunc("POST /orders", h.handleSubmit)
	mux.HandleFunc("GET /orders", h.handleList)
	mux.HandleFunc("GET /orders/{id}", h.handleGet)
	mux.HandleFunc("POST /orders/{id}/status", h.handleStatus)
	mux.HandleFunc("POST /orders/{id}/tracking", h.handleTracking)
	mux.HandleFunc("POST /orders/{id}/cancel", h.handleCancel)
	mux.HandleFunc("POST /orders/{id}/recalculate", h.handleRecalculate)
	mux.HandleFunc("POST /orders/{id}/payment-link", h.handlePaymentLink)
}

// writeOrderError maps the domain error taxonomy onto HTTP status codes.
func writeOrderError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, pricing.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		statusCode = http.StatusConflict
	case errors.Is(err, wallet.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
	case errors.Is(err, port.ErrExternalService):
		statusCode = http.StatusBadGateway
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type submitPayload struct {
	UserID        string            `json:"user_id,omitempty"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	Channel       string            `json:"channel,omitempty"`
	Spec          pricing.PrintSpec `json:"spec"`
}

func (h *OrderHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p submitPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	breakdown, err := h.service.Quote(ctx, p.UserID, p.Spec)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *OrderHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p submitPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.service.Submit(ctx, application.SubmitRequest{
		UserID:        p.UserID,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		Spec:          p.Spec,
		Channel:       domain.FundingChannel(p.Channel),
	})
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	filter := domain.ListFilter{
		UserID: r.URL.Query().Get("user_id"),
		Status: domain.Status(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		http.Error(w, "unknown status filter", http.StatusBadRequest)
		return
	}
	orders, err := h.service.List(ctx, filter)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	order, err := h.service.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.service.Transition(ctx, r.PathValue("id"), domain.Status(p.Status))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) handleTracking(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var tracking domain.TrackingDetails
	if err := json.NewDecoder(r.Body).Decode(&tracking); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.service.UpdateTracking(ctx, r.PathValue("id"), tracking)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	order, err := h.service.Cancel(ctx, r.PathValue("id"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) handlePaymentLink(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	order, err := h.service.RegeneratePaymentLink(ctx, r.PathValue("id"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"order_id": order.ID, "payment_url": order.PaymentURL})
}

func (h *OrderHandler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p struct {
		Spec pricing.PrintSpec `json:"spec"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.service.Recalculate(ctx, r.PathValue("id"), p.Spec)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
