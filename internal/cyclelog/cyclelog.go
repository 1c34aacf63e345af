// Package cyclelog keeps an append-only CSV record of payout cycles.
package cyclelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/lock"
	"github.com/labourtime/labourtime/internal/metrics"
	"github.com/labourtime/labourtime/internal/payout"
)

// Entry is one row in the cycle log.
type Entry struct {
	Started      time.Time
	Finished     time.Time
	Result       string
	Factor       decimal.Decimal
	PlansUpdated int
	Payouts      int
	PlansExpired int
	TotalPaid    decimal.Decimal
	Error        string
}

// Header is the CSV header of the cycle log.
const Header = "started,finished,result,factor,plans_updated,payouts,plans_expired,total_paid,error"

const (
	numFields       = 9
	colStarted      = 0
	colFinished     = 1
	colResult       = 2
	colFactor       = 3
	colPlansUpdated = 4
	colPayouts      = 5
	colPlansExpired = 6
	colTotalPaid    = 7
	colError        = 8
)

// FromReport turns the outcome of payout.Engine.RunCycle into an Entry.
func FromReport(r payout.CycleReport, err error) Entry {
	e := Entry{
		Started:      r.Started,
		Finished:     r.Finished,
		Result:       metrics.ResultOK,
		Factor:       r.Factor,
		PlansUpdated: r.PlansUpdated,
		Payouts:      r.Payouts,
		PlansExpired: r.PlansExpired,
		TotalPaid:    r.TotalPaid,
	}
	switch {
	case errors.Is(err, lock.ErrHeld):
		e.Result = metrics.ResultSkipped
	case err != nil:
		e.Result = metrics.ResultError
		e.Error = err.Error()
	}
	return e
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colStarted] = formatTime(e.Started)
	row[colFinished] = formatTime(e.Finished)
	row[colResult] = e.Result
	row[colFactor] = e.Factor.String()
	row[colPlansUpdated] = strconv.Itoa(e.PlansUpdated)
	row[colPayouts] = strconv.Itoa(e.Payouts)
	row[colPlansExpired] = strconv.Itoa(e.PlansExpired)
	row[colTotalPaid] = e.TotalPaid.String()
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	e := Entry{Result: record[colResult], Error: record[colError]}
	var err error
	if e.Started, err = parseTime(record[colStarted]); err != nil {
		return Entry{}, err
	}
	if e.Finished, err = parseTime(record[colFinished]); err != nil {
		return Entry{}, err
	}
	if e.Factor, err = decimal.NewFromString(record[colFactor]); err != nil {
		return Entry{}, fmt.Errorf("parsing factor %q: %w", record[colFactor], err)
	}
	if e.TotalPaid, err = decimal.NewFromString(record[colTotalPaid]); err != nil {
		return Entry{}, fmt.Errorf("parsing total paid %q: %w", record[colTotalPaid], err)
	}
	counts := []struct {
		col int
		dst *int
	}{
		{colPlansUpdated, &e.PlansUpdated},
		{colPayouts, &e.Payouts},
		{colPlansExpired, &e.PlansExpired},
	}
	for _, c := range counts {
		if *c.dst, err = strconv.Atoi(record[c.col]); err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[c.col], err)
		}
	}
	return e, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// Append writes entries to the log at path, creating the file, its
// directory and the header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening cycle log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the log at path, or nil if it does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening cycle log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading cycle log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Log appends to one file.
type Log struct {
	path string
}

// New returns a Log writing to path. An empty path disables logging.
func New(path string) *Log {
	return &Log{path: path}
}

// Record appends the outcome of one cycle.
func (l *Log) Record(r payout.CycleReport, err error) error {
	if l == nil || l.path == "" {
		return nil
	}
	return Append(l.path, []Entry{FromReport(r, err)})
}
