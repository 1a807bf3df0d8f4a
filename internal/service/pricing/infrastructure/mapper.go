package infrastructure

import (
	"encoding/json"

	"printexpress/internal/service/pricing/domain"
)

// rulesDocument is the JSON shape of the stored tariff table. It mirrors the
// original rule record's field names so an export stays recognizable.
type rulesDocument struct {
	Printing struct {
		BW    sideRatesDoc `json:"bw"`
		Color sideRatesDoc `json:"color"`
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

type sideRatesDoc struct {
	Single float64 `json:"single"`
	Double float64 `json:"double"`
}

// ToDomainRuleSet converts a database row into the domain rule set.
func ToDomainRuleSet(model *RuleSetModel) (domain.PricingRuleSet, error) {
	var doc rulesDocument
	if err := json.Unmarshal([]byte(model.Rules), &doc); err != nil {
		return domain.PricingRuleSet{}, err
	}
	rs := domain.PricingRuleSet{Version: model.Version}
	rs.Printing.BW = domain.SideRates(doc.Printing.BW)
	rs.Printing.Color = domain.SideRates(doc.Printing.Color)
	rs.Additional = domain.AdditionalFees(doc.Additional)
	rs.DeliveryTiers = domain.DeliveryTiers(doc.DeliveryTiers)
	return rs, nil
}

// FromDomainRuleSet serializes a rule set for storage.
func FromDomainRuleSet(rs domain.PricingRuleSet) (string, error) {
	var doc rulesDocument
	doc.Printing.BW = sideRatesDoc(rs.Printing.BW)
	doc.Printing.Color = sideRatesDoc(rs.Printing.Color)
	doc.Additional = struct {
		Binding      float64 `json:"binding"`
		HardBinding  float64 `json:"hard_binding"`
		ChartBinding float64 `json:"chart_binding"`
		HandlingFee  float64 `json:"handling_fee"`
	}(rs.Additional)
	doc.DeliveryTiers = struct {
		TierA float64 `json:"tier_a"`
		TierB float64 `json:"tier_b"`
		TierC float64 `json:"tier_c"`
		TierD float64 `json:"tier_d"`
	}(rs.DeliveryTiers)
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
