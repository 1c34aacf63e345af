// Package pricing computes per-unit prices of plan products and books
// consumer purchases at those prices.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// CalculatePrice returns the blended per-unit price of a group of plans:
// their summed total cost over their summed product amount. An empty group
// or one without output is priced at zero.
func CalculatePrice(plans []model.Plan) decimal.Decimal {
	cost := decimal.Zero
	var amount int64
	for _, p := range plans {
		cost = cost.Add(p.Costs.Total())
		amount += int64(p.ProductAmount)
	}
	if amount == 0 {
		return decimal.Zero
	}
	return cost.Div(decimal.NewFromInt(amount))
}

// PricePerUnit returns a plan's own per-unit price. Public services give
// their products away.
func PricePerUnit(p model.Plan) decimal.Decimal {
	if p.IsPublicService {
		return decimal.Zero
	}
	return CalculatePrice([]model.Plan{p})
}

// ExpectedSalesValue is what a plan's product account is expected to earn
// back: its total cost, or zero for public services.
func ExpectedSalesValue(p model.Plan) decimal.Decimal {
	if p.IsPublicService {
		return decimal.Zero
	}
	return p.Costs.Total()
}
