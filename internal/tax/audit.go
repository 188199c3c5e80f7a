package tax

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cupcakehq/pos/internal/basket"
	"github.com/cupcakehq/pos/internal/bill"
)

// Counts partitions audited records into totals.
type Counts struct {
	Total   int
	Valid   int
	Invalid int
}

// ImportRollup re-reads previously exported rollup rows and re-validates
// each transaction line: the stored checksum must match a fresh derivation
// from the canonical line, the item code must fit the allowed pattern and
// the sale price must parse non-negative. Failing rows are kept and marked
// invalid rather than dropped, so the operator can see what was tampered
// with.
func ImportRollup(rows [][]string) []Record {
	var records []Record
	for _, row := range rows {
		if len(row) < 6 || row[0] == rollupColumns[0] {
			continue
		}
		rec := Record{
			BillNumber:   row[0],
			ItemCode:     row[1],
			rawSalePrice: row[2],
			rawQuantity:  row[3],
			rawLineTotal: row[4],
		}
		stored, err := strconv.Atoi(row[5])
		derived := Checksum(CanonicalLine(rec.BillNumber, rec.ItemCode, rec.rawSalePrice, rec.rawQuantity, rec.rawLineTotal))
		rec.Checksum = derived

		rec.SalePrice, _ = decimal.NewFromString(rec.rawSalePrice)
		rec.Quantity, _ = strconv.Atoi(rec.rawQuantity)
		rec.LineTotal, _ = decimal.NewFromString(rec.rawLineTotal)

		rec.Valid = err == nil && stored == derived &&
			basket.ValidItemCode(rec.ItemCode) &&
			validSalePrice(rec.rawSalePrice)
		records = append(records, rec)
	}
	return records
}

func validSalePrice(raw string) bool {
	d, err := decimal.NewFromString(raw)
	return err == nil && !d.IsNegative()
}

// CountRecords tallies how many audited records passed validation.
func CountRecords(records []Record) Counts {
	c := Counts{Total: len(records)}
	for _, rec := range records {
		if rec.Valid {
			c.Valid++
		} else {
			c.Invalid++
		}
	}
	return c
}

// AuditRollup loads one rollup by key, or the most recent one when key is
// empty, and re-validates every line.
func (s *Service) AuditRollup(ctx context.Context, key string) (string, []Record, error) {
	if key == "" {
		keys, err := s.Tax.List()
		if err != nil {
			return "", nil, err
		}
		if len(keys) == 0 {
			return "", nil, ErrNoRollups
		}
		key = keys[len(keys)-1]
	}
	rows, err := s.Tax.Read(key)
	if err != nil {
		return "", nil, err
	}
	records := ImportRollup(rows)
	counts := CountRecords(records)
	s.Log.Info().
		Str("rollup", key).
		Int("total", counts.Total).
		Int("invalid", counts.Invalid).
		Msg("rollup audited")
	return key, records, nil
}

// Profit computes the margin of one line item:
// (sale price − discount) × quantity − internal price × quantity.
func Profit(item basket.LineItem) decimal.Decimal {
	qty := decimal.NewFromInt(int64(item.Quantity))
	revenue := item.SalePrice.Sub(item.Discount).Mul(qty)
	cost := item.InternalPrice.Mul(qty)
	return revenue.Sub(cost)
}

// FinalTax applies ratePercent to the taxable amount of the given per-line
// profits: positive profits accumulate, losses offset them, and a net loss
// is clamped to zero taxable.
func FinalTax(profits []decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	totalProfit := decimal.Zero
	totalLoss := decimal.Zero
	for _, p := range profits {
		if p.IsPositive() {
			totalProfit = totalProfit.Add(p)
		} else {
			totalLoss = totalLoss.Add(p.Abs())
		}
	}
	taxable := totalProfit.Sub(totalLoss)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	rate := ratePercent.DivRound(decimal.NewFromInt(100), 4)
	return taxable.Mul(rate)
}

// FinalTaxFromBills walks every persisted bill, computes per-line profits
// from the full item rows (the rollup file lacks internal prices) and
// returns the resulting tax due at ratePercent.
func (s *Service) FinalTaxFromBills(ctx context.Context, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	keys, err := s.Bills.List()
	if err != nil {
		return decimal.Zero, err
	}
	if len(keys) == 0 {
		return decimal.Zero, ErrNoBills
	}
	var profits []decimal.Decimal
	for _, key := range keys {
		if !bill.ValidNumber(key) {
			continue
		}
		rows, err := s.Bills.Read(key)
		if err != nil {
			return decimal.Zero, err
		}
		for _, item := range billItems(rows) {
			profits = append(profits, Profit(item))
		}
	}
	return FinalTax(profits, ratePercent), nil
}

func billItems(rows [][]string) []basket.LineItem {
	return bill.Decode("", rows).Items
}
