package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"printexpress/internal/service/pricing/domain"
)

// PricingHandler exposes the tariff table over HTTP.
type PricingHandler struct {
	repo domain.RuleSetRepository
}

// NewPricingHandler creates the handler.
func NewPricingHandler(repo domain.RuleSetRepository) *PricingHandler {
	return &PricingHandler{repo: repo}
}

// RegisterRoutes registers pricing routes on the mux.
func (h *PricingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /pricing", h.handleGet)
	mux.HandleFunc("POST /pricing/update", h.handleUpdate)
}

type ruleSetPayload struct {
	Version  int64 `json:"version,omitempty"`
	Printing struct {
		BW    sideRates `json:"bw"`
		Color sideRates `json:"color"`
	} `json:"printing"`
	Additional struct {
		Binding      float64 `json:"binding"`
		HardBinding  float64 `json:"hard_binding"`
		ChartBinding float64 `json:"chart_binding"`
		HandlingFee  float64 `json:"handling_fee"`
	} `json:"additional"`
	DeliveryTiers struct {
		TierA float64 `json:"tier_a"`
		TierB float64 `json:"tier_b"`
		TierC float64 `json:"tier_c"`
		TierD float64 `json:"tier_d"`
	} `json:"delivery_tiers"`
}

type sideRates struct {
	Single float64 `json:"single"`
	Double float64 `json:"double"`
}

func toPayload(rs domain.PricingRuleSet) ruleSetPayload {
	var p ruleSetPayload
	p.Version = rs.Version
	p.Printing.BW = sideRates(rs.Printing.BW)
	p.Printing.Color = sideRates(rs.Printing.Color)
	p.Additional = struct {
		Binding      float64 `json:"binding"`
		HardBinding  float64 `json:"hard_binding"`
		ChartBinding float64 `json:"chart_binding"`
		HandlingFee  float64 `json:"handling_fee"`
	}(rs.Additional)
	p.DeliveryTiers = struct {
		TierA float64 `json:"tier_a"`
		TierB float64 `json:"tier_b"`
		TierC float64 `json:"tier_c"`
		TierD float64 `json:"tier_d"`
	}(rs.DeliveryTiers)
	return p
}

func (p ruleSetPayload) toDomain() domain.PricingRuleSet {
	rs := domain.PricingRuleSet{}
	rs.Printing.BW = domain.SideRates(p.Printing.BW)
	rs.Printing.Color = domain.SideRates(p.Printing.Color)
	rs.Additional = domain.AdditionalFees(p.Additional)
	rs.DeliveryTiers = domain.DeliveryTiers(p.DeliveryTiers)
	return rs
}

func (h *PricingHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	rs, err := h.repo.Current(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayload(rs))
}

func (h *PricingHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var payload ruleSetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rs, err := h.repo.Replace(ctx, payload.toDomain())
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrValidation):
			statusCode = http.StatusBadRequest
		default:
			statusCode = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPayload(rs))
}
