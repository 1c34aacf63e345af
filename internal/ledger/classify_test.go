package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labourtime/labourtime/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		sender, receiver model.AccountKind
		viewerIsSender   bool
		want             TransactionType
	}{
		{model.AccountKindAccounting, model.AccountKindLabour, false, TypeCreditForWages},
		{model.AccountKindAccounting, model.AccountKindMeans, false, TypeCreditForFixedMeans},
		{model.AccountKindAccounting, model.AccountKindResources, false, TypeCreditForLiquidMeans},
		{model.AccountKindAccounting, model.AccountKindProduct, false, TypeExpectedSales},
		{model.AccountKindAccounting, model.AccountKindMember, false, TypeIncomingWages},
		{model.AccountKindLabour, model.AccountKindMember, true, TypePaymentOfWages},
		{model.AccountKindLabour, model.AccountKindMember, false, TypeIncomingWages},
		{model.AccountKindMeans, model.AccountKindProduct, true, TypePaymentOfFixedMeans},
		{model.AccountKindMeans, model.AccountKindProduct, false, TypeSaleOfFixedMeans},
		{model.AccountKindResources, model.AccountKindProduct, true, TypePaymentOfLiquidMeans},
		{model.AccountKindResources, model.AccountKindProduct, false, TypeSaleOfLiquidMeans},
		{model.AccountKindMember, model.AccountKindProduct, true, TypePaymentOfConsumerProduct},
		{model.AccountKindMember, model.AccountKindProduct, false, TypeSaleOfConsumerProduct},
		{model.AccountKindProduct, model.AccountKindMember, true, TypeUnknown},
		{model.AccountKindAccounting, model.AccountKindAccounting, false, TypeUnknown},
	}
	for _, tt := range tests {
		got := Classify(tt.sender, tt.receiver, tt.viewerIsSender)
		assert.Equal(t, tt.want, got, "%s -> %s (sender view %v)", tt.sender, tt.receiver, tt.viewerIsSender)
	}
}

func TestVolume(t *testing.T) {
	tr := model.Transaction{AmountSent: dec("0.75"), AmountReceived: dec("1")}
	assert.True(t, dec("-0.75").Equal(Volume(tr, true)))
	assert.True(t, dec("1").Equal(Volume(tr, false)))
}
