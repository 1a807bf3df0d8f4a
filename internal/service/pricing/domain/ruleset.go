package domain

import "math"

// PricingRuleSet is the versioned tariff table for the whole shop. There is
// exactly one live row; orders copy its values at submission time and never
// reference it afterwards.
type PricingRuleSet struct {
	Version int64

	Printing      PrintingRates
	Additional    AdditionalFees
	DeliveryTiers DeliveryTiers
}

// PrintingRates are per-page rates keyed by color mode and side mode.
type PrintingRates struct {
	BW    SideRates
	Color SideRates
}

// SideRates hold the single/double sided per-page rate pair.
type SideRates struct {
	Single float64
	Double float64
}

// AdditionalFees are flat per-order or per-file charges.
type AdditionalFees struct {
	Binding      float64 // spiral
	HardBinding  float64
	ChartBinding float64
	HandlingFee  float64
}

// DeliveryTiers are page-count-bracketed delivery charges.
type DeliveryTiers struct {
	TierA float64 // up to 200 pages
	TierB float64 // more than 200 pages
	TierC float64 // more than 500 pages
	TierD float64 // 1000 pages and above (bulk)
}

// DefaultRuleSet returns the rates the shop opened with; used to seed the
// singleton row when none exists yet.
func DefaultRuleSet() PricingRuleSet {
	return PricingRuleSet{
		Version: 1,
		Printing: PrintingRates{
			BW:    SideRates{Single: 2, Double: 3},
			Color: SideRates{Single: 10, Double: 15},
		},
		Additional: AdditionalFees{
			Binding:      50,
			HardBinding:  200,
			ChartBinding: 150,
			HandlingFee:  10,
		},
		DeliveryTiers: DeliveryTiers{TierA: 40, TierB: 60, TierC: 80, TierD: 150},
	}
}

// Validate rejects rule sets with negative or non-finite rates.
func (rs PricingRuleSet) Validate() error {
	rates := []float64{
		rs.Printing.BW.Single, rs.Printing.BW.Double,
		rs.Printing.Color.Single, rs.Printing.Color.Double,
		rs.Additional.Binding, rs.Additional.HardBinding,
		rs.Additional.ChartBinding, rs.Additional.HandlingFee,
		rs.DeliveryTiers.TierA, rs.DeliveryTiers.TierB,
		rs.DeliveryTiers.TierC, rs.DeliveryTiers.TierD,
	}
	for _, r := range rates {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return ErrValidation
		}
	}
	return nil
}

// DeliveryCharge selects the tier for a total page count. The original rule
// table left 100-200 pages unassigned; those resolve to tier A, so the
// effective brackets are: >=1000 D, >500 C, >200 B, otherwise A.
func (rs PricingRuleSet) DeliveryCharge(totalPages int) float64 {
	switch {
	case totalPages >= 1000:
		return rs.DeliveryTiers.TierD
	case totalPages > 500:
		return rs.DeliveryTiers.TierC
	case totalPages > 200:
		return rs.DeliveryTiers.TierB
	default:
		return rs.DeliveryTiers.TierA
	}
}
