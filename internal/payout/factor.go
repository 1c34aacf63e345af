package payout

import (
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// FactorInputs are the daily cost sums the payout factor is built from.
type FactorInputs struct {
	ProductiveLabour decimal.Decimal // A
	PublicMeans      decimal.Decimal // P_o
	PublicResources  decimal.Decimal // R_o
	PublicLabour     decimal.Decimal // A_o
}

// SumFactorInputs sums the per-day costs of payable plans, split into
// productive and public-service plans. Plans that are not payable are
// skipped.
func SumFactorInputs(plans []model.Plan) FactorInputs {
	in := FactorInputs{
		ProductiveLabour: decimal.Zero,
		PublicMeans:      decimal.Zero,
		PublicResources:  decimal.Zero,
		PublicLabour:     decimal.Zero,
	}
	for _, p := range plans {
		if !p.IsPayable() || p.Timeframe <= 0 {
			continue
		}
		perDay := p.Costs.PerDay(p.Timeframe)
		if p.IsPublicService {
			in.PublicMeans = in.PublicMeans.Add(perDay.Means)
			in.PublicResources = in.PublicResources.Add(perDay.Resources)
			in.PublicLabour = in.PublicLabour.Add(perDay.Labour)
			continue
		}
		in.ProductiveLabour = in.ProductiveLabour.Add(perDay.Labour)
	}
	return in
}

// Factor returns (A - (P_o + R_o)) / (A + A_o). A zero denominator is
// replaced by one. The result is not clamped and may be negative.
func (in FactorInputs) Factor() decimal.Decimal {
	numerator := in.ProductiveLabour.Sub(in.PublicMeans.Add(in.PublicResources))
	denominator := in.ProductiveLabour.Add(in.PublicLabour)
	if denominator.IsZero() {
		denominator = decimal.NewFromInt(1)
	}
	return numerator.Div(denominator)
}

// Factor computes the payout factor over payable plans.
func Factor(plans []model.Plan) decimal.Decimal {
	return SumFactorInputs(plans).Factor()
}

// DailyWage is one payout of a plan at the given factor, rounded half to
// even to two places.
func DailyWage(factor decimal.Decimal, p model.Plan) decimal.Decimal {
	return factor.Mul(p.Costs.Labour).Div(decimal.NewFromInt(int64(p.Timeframe))).RoundBank(2)
}
