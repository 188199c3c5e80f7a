// Package tax turns the bill store into tax-reporting artifacts: a rollup
// file re-deriving every historical transaction line with an audit checksum,
// plus the audit-side import, profit and final-tax computations.
package tax

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cupcakehq/pos/internal/bill"
	"github.com/cupcakehq/pos/internal/store"
)

// ErrNoBills is returned when a rollup is requested over an empty bill store.
var ErrNoBills = errors.New("no bills found")

// ErrNoRollups is returned when an audit is requested but no rollup exists.
var ErrNoRollups = errors.New("no rollup files found")

var rollupColumns = []string{"Bill Number", "Item Code", "Sale Price", "Quantity", "Line Total", "Checksum"}

// Record is one reconstructed transaction line of a rollup. The string
// fields carry the persisted text verbatim; SalePrice, Quantity and
// LineTotal are the parsed forms where parsing succeeded.
type Record struct {
	BillNumber string
	ItemCode   string
	SalePrice  decimal.Decimal
	Quantity   int
	LineTotal  decimal.Decimal
	Checksum   int
	Valid      bool

	rawSalePrice string
	rawQuantity  string
	rawLineTotal string
}

// Service generates and audits tax rollups over the persisted bills.
type Service struct {
	Bills *store.BillStore
	Tax   *store.TaxStore
	Now   func() time.Time
	Log   zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateRollup scans every persisted bill, re-derives each item line with
// its checksum and writes one new rollup file named by the generation
// timestamp. Rows appear in store enumeration order, then item order within
// each bill. Re-running over unchanged bills reproduces the item rows byte
// for byte; only the file name differs.
func (s *Service) GenerateRollup(ctx context.Context) (string, []Record, error) {
	records, err := s.collect()
	if err != nil {
		return "", nil, err
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, rollupColumns)
	for _, rec := range records {
		rows = append(rows, []string{
			rec.BillNumber,
			rec.ItemCode,
			rec.rawSalePrice,
			rec.rawQuantity,
			rec.rawLineTotal,
			strconv.Itoa(rec.Checksum),
		})
	}

	key := "tax_" + s.now().Format("20060102_150405")
	if err := s.Tax.Write(key, rows); err != nil {
		return "", nil, err
	}
	s.Log.Info().
		Str("rollup", key).
		Int("records", len(records)).
		Msg("tax rollup generated")
	return key, records, nil
}

// collect walks the bill store and rebuilds every item line. Malformed rows
// are skipped silently; an unreadable bill fails the whole operation.
func (s *Service) collect() ([]Record, error) {
	keys, err := s.Bills.List()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoBills
	}
	var records []Record
	for _, key := range keys {
		if !bill.ValidNumber(key) {
			continue
		}
		rows, err := s.Bills.Read(key)
		if err != nil {
			return nil, err
		}
		for _, fields := range bill.ItemRows(rows) {
			if len(fields) < 6 {
				continue
			}
			rec := Record{
				BillNumber:   key,
				ItemCode:     fields[0],
				rawSalePrice: fields[3],
				rawQuantity:  fields[4],
				rawLineTotal: fields[5],
				Valid:        true,
			}
			rec.Checksum = Checksum(CanonicalLine(rec.BillNumber, rec.ItemCode, rec.rawSalePrice, rec.rawQuantity, rec.rawLineTotal))
			rec.SalePrice, _ = decimal.NewFromString(rec.rawSalePrice)
			rec.Quantity, _ = strconv.Atoi(rec.rawQuantity)
			rec.LineTotal, _ = decimal.NewFromString(rec.rawLineTotal)
			records = append(records, rec)
		}
	}
	return records, nil
}
