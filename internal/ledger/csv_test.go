package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labourtime/labourtime/internal/model"
)

func TestCSVRoundTrip(t *testing.T) {
	txs := []model.Transaction{
		{
			ID:               uuid.New(),
			Date:             date(2024, 2, 29).Add(90 * time.Minute),
			SendingAccount:   uuid.New(),
			ReceivingAccount: uuid.New(),
			AmountSent:       dec("0.8333333333333333"),
			AmountReceived:   dec("1"),
			Purpose:          "Plan-Id: with, comma",
		},
		{
			ID:               uuid.New(),
			Date:             date(2024, 3, 1),
			SendingAccount:   uuid.New(),
			ReceivingAccount: uuid.New(),
			AmountSent:       dec("-0.32"),
			AmountReceived:   dec("-0.32"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range txs {
		assert.Equal(t, txs[i].ID, got[i].ID)
		assert.True(t, txs[i].Date.Equal(got[i].Date))
		assert.Equal(t, txs[i].SendingAccount, got[i].SendingAccount)
		assert.True(t, txs[i].AmountSent.Equal(got[i].AmountSent))
		assert.True(t, txs[i].AmountReceived.Equal(got[i].AmountReceived))
		assert.Equal(t, txs[i].Purpose, got[i].Purpose)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalTransaction_Errors(t *testing.T) {
	good := MarshalTransaction(model.Transaction{
		ID:               uuid.New(),
		Date:             date(2024, 1, 1),
		SendingAccount:   uuid.New(),
		ReceivingAccount: uuid.New(),
		AmountSent:       dec("1"),
		AmountReceived:   dec("1"),
	})

	tests := []struct {
		name string
		col  int
		val  string
		want string
	}{
		{"bad id", colID, "nope", "parsing id"},
		{"bad date", colDate, "yesterday", "parsing date"},
		{"bad sender", colSender, "x", "parsing sending_account"},
		{"bad amount", colAmountSent, "1.2.3", "parsing amount_sent"},
		{"bad received", colAmountRecv, "", "parsing amount_received"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := append([]string(nil), good...)
			row[tt.col] = tt.val
			_, err := UnmarshalTransaction(row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := UnmarshalTransaction(good[:3])
	assert.ErrorContains(t, err, "expected 7 fields")
}
