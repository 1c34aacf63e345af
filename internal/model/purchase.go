package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchasePurpose says what a purchased product is used for.
type PurchasePurpose string

const (
	PurposeMeansOfProduction PurchasePurpose = "means_of_prod"
	PurposeRawMaterials      PurchasePurpose = "raw_materials"
	PurposeConsumption       PurchasePurpose = "consumption"
)

// Purchase records a buyer taking Amount units of a plan's product at
// PricePerUnit, the cooperation price at the time of purchase.
type Purchase struct {
	ID           uuid.UUID
	Date         time.Time
	Plan         uuid.UUID
	Buyer        uuid.UUID // member
	PricePerUnit decimal.Decimal
	Amount       int
	Purpose      PurchasePurpose
	Transaction  uuid.UUID
}

// Total is the price paid for all units.
func (p Purchase) Total() decimal.Decimal {
	return p.PricePerUnit.Mul(decimal.NewFromInt(int64(p.Amount)))
}
