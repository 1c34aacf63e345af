package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// TransactionType is the kind of a transaction as seen by one of its
// parties.
type TransactionType string

const (
	TypeCreditForWages           TransactionType = "credit_for_wages"
	TypePaymentOfWages           TransactionType = "payment_of_wages"
	TypeIncomingWages            TransactionType = "incoming_wages"
	TypeCreditForFixedMeans      TransactionType = "credit_for_fixed_means"
	TypePaymentOfFixedMeans      TransactionType = "payment_of_fixed_means"
	TypeCreditForLiquidMeans     TransactionType = "credit_for_liquid_means"
	TypePaymentOfLiquidMeans     TransactionType = "payment_of_liquid_means"
	TypeExpectedSales            TransactionType = "expected_sales"
	TypeSaleOfConsumerProduct    TransactionType = "sale_of_consumer_product"
	TypePaymentOfConsumerProduct TransactionType = "payment_of_consumer_product"
	TypeSaleOfFixedMeans         TransactionType = "sale_of_fixed_means"
	TypeSaleOfLiquidMeans        TransactionType = "sale_of_liquid_means"
	TypeUnknown                  TransactionType = "unknown"
)

// Classify returns the type of a transaction from the viewer's side, given
// the kinds of the sending and receiving accounts.
func Classify(sender, receiver model.AccountKind, viewerIsSender bool) TransactionType {
	if viewerIsSender {
		switch sender {
		case model.AccountKindLabour:
			return TypePaymentOfWages
		case model.AccountKindMeans:
			return TypePaymentOfFixedMeans
		case model.AccountKindResources:
			return TypePaymentOfLiquidMeans
		case model.AccountKindMember:
			return TypePaymentOfConsumerProduct
		}
		return TypeUnknown
	}

	switch sender {
	case model.AccountKindAccounting:
		switch receiver {
		case model.AccountKindLabour:
			return TypeCreditForWages
		case model.AccountKindMeans:
			return TypeCreditForFixedMeans
		case model.AccountKindResources:
			return TypeCreditForLiquidMeans
		case model.AccountKindProduct:
			return TypeExpectedSales
		case model.AccountKindMember:
			return TypeIncomingWages
		}
	case model.AccountKindMeans:
		return TypeSaleOfFixedMeans
	case model.AccountKindResources:
		return TypeSaleOfLiquidMeans
	case model.AccountKindMember:
		return TypeSaleOfConsumerProduct
	case model.AccountKindLabour:
		return TypeIncomingWages
	}
	return TypeUnknown
}

// Volume returns the signed amount of t from the viewer's side.
func Volume(t model.Transaction, viewerIsSender bool) decimal.Decimal {
	if viewerIsSender {
		return t.AmountSent.Neg()
	}
	return t.AmountReceived
}
