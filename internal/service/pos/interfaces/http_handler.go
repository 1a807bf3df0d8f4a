package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	catalog "printexpress/internal/service/catalog/domain"
	"printexpress/internal/service/pos/application"
	"printexpress/internal/service/pos/domain"
	pricing "printexpress/internal/service/pricing/domain"
)

// PosHandler exposes the counter fast path over HTTP.
type PosHandler struct {
	service *application.PosService
}

// NewPosHandler creates the handler.
func NewPosHandler(service *application.PosService) *PosHandler {
	return &PosHandler{service: service}
}

// RegisterRoutes registers POS routes on the mux.
func (h *PosHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /pos/sales", h.handleCommit)
	mux.HandleFunc("GET /pos/sales", h.handleList)
}

type commitPayload struct {
	StaffID       string                 `json:"staff_id"`
	PaymentMethod string                 `json:"payment_method"`
	Lines         []application.SaleLine `json:"lines"`
}

func writePosError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, pricing.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, catalog.ErrItemNotFound):
		statusCode = http.StatusNotFound
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}

func (h *PosHandler) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p commitPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sale, err := h.service.CommitSale(ctx, p.StaffID, domain.PaymentMethod(p.PaymentMethod), p.Lines)
	if err != nil {
		writePosError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sale)
}

func (h *PosHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sales, err := h.service.Sales(ctx, limit)
	if err != nil {
		writePosError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sales)
}
