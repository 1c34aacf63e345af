package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/model"
)

// Header is the CSV header of an exported ledger.
const Header = "id,date,sending_account,receiving_account,amount_sent,amount_received,purpose"

const (
	numFields     = 7
	colID         = 0
	colDate       = 1
	colSender     = 2
	colReceiver   = 3
	colAmountSent = 4
	colAmountRecv = 5
	colPurpose    = 6
)

// WriteCSV writes transactions including the header.
func WriteCSV(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txs {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads transactions written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txs []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID.String()
	row[colDate] = t.Date.UTC().Format(time.RFC3339Nano)
	row[colSender] = t.SendingAccount.String()
	row[colReceiver] = t.ReceivingAccount.String()
	row[colAmountSent] = t.AmountSent.String()
	row[colAmountRecv] = t.AmountReceived.String()
	row[colPurpose] = t.Purpose
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	txID, err := uuid.Parse(record[colID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
	}
	date, err := time.Parse(time.RFC3339Nano, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	sender, err := uuid.Parse(record[colSender])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing sending_account %q: %w", record[colSender], err)
	}
	receiver, err := uuid.Parse(record[colReceiver])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing receiving_account %q: %w", record[colReceiver], err)
	}
	sent, err := decimal.NewFromString(record[colAmountSent])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount_sent %q: %w", record[colAmountSent], err)
	}
	received, err := decimal.NewFromString(record[colAmountRecv])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount_received %q: %w", record[colAmountRecv], err)
	}

	return model.Transaction{
		ID:               txID,
		Date:             date,
		SendingAccount:   sender,
		ReceivingAccount: receiver,
		AmountSent:       sent,
		AmountReceived:   received,
		Purpose:          record[colPurpose],
	}, nil
}
