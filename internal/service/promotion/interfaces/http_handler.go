package interfaces

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	pricing "printexpress/internal/service/pricing/domain"
	"printexpress/internal/service/promotion/domain"
)

// PromotionHandler exposes the admin coupon surface over HTTP.
type PromotionHandler struct {
	repo   domain.CouponRepository
	engine domain.RuleEngine
}

// NewPromotionHandler creates the handler.
func NewPromotionHandler(repo domain.CouponRepository, engine domain.RuleEngine) *PromotionHandler {
	return &PromotionHandler{repo: repo, engine: engine}
}

// RegisterRoutes registers coupon routes on the mux.
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /coupons", h.handleSave)
	mux.HandleFunc("GET /coupons/{code}", h.handleGet)
}

type couponPayload struct {
	Code            string  `json:"code"`
	DiscountType    string  `json:"discount_type"`
	Value           float64 `json:"value"`
	MinOrderValue   float64 `json:"min_order_value,omitempty"`
	ExpiresAt       string  `json:"expires_at,omitempty"`
	UsageLimit      int     `json:"usage_limit,omitempty"`
	EligibilityRule string  `json:"eligibility_rule,omitempty"`
}

func (h *PromotionHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p couponPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Code == "" || p.Value <= 0 {
		http.Error(w, "code is required and value must be positive", http.StatusBadRequest)
		return
	}
	discountType := pricing.DiscountType(p.DiscountType)
	if discountType != pricing.DiscountPercent && discountType != pricing.DiscountFlat {
		http.Error(w, "discount_type must be percent or flat", http.StatusBadRequest)
		return
	}

	var expiresAt time.Time
	if p.ExpiresAt != "" {
		var err error
		expiresAt, err = time.Parse(time.RFC3339, p.ExpiresAt)
		if err != nil {
			http.Error(w, "expires_at must be RFC 3339", http.StatusBadRequest)
			return
		}
	}

	// A rule that cannot even compile would silently void the coupon at
	// order time, so reject it here instead.
	if p.EligibilityRule != "" {
		if _, err := h.engine.Evaluate(p.EligibilityRule, domain.Fact{}); err != nil {
			http.Error(w, errors.Wrap(err, "eligibility_rule does not evaluate").Error(), http.StatusBadRequest)
			return
		}
	}

	coupon := &domain.Coupon{
		Code:            p.Code,
		DiscountType:    discountType,
		Value:           p.Value,
		MinOrderValue:   p.MinOrderValue,
		ExpiresAt:       expiresAt,
		UsageLimit:      p.UsageLimit,
		EligibilityRule: p.EligibilityRule,
	}
	if err := h.repo.Save(ctx, coupon); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(coupon)
}

func (h *PromotionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	coupon, err := h.repo.FindByCode(ctx, r.PathValue("code"))
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(coupon)
}
