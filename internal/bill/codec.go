package bill

import (
	"strconv"
	"time"

	"github.com/cupcakehq/pos/internal/basket"
	"github.com/cupcakehq/pos/internal/money"
)

// Persisted record vocabulary. The row labels double as section markers when
// parsing: an item row is any row strictly between the column-label row and
// the grand-total footer.
const (
	labelBillNumber = "Bill Number"
	labelDate       = "Date"
	labelGrandTotal = "Grand Total"

	issuedAtLayout = "2006-01-02 15:04:05"
)

var columnLabels = []string{"Item Code", "Internal Price", "Discount", "Sale Price", "Quantity", "Line Total"}

// LineKind tags one logical line of a persisted bill record.
type LineKind int

const (
	KindHeader LineKind = iota
	KindBlank
	KindColumnLabels
	KindItem
	KindFooter
)

// Line is one tagged line of a bill record. Header and Footer lines carry a
// label/value pair; Item lines carry the raw column fields exactly as they
// appear on disk, so checksum derivation sees the persisted text.
type Line struct {
	Kind   LineKind
	Label  string
	Value  string
	Fields []string
}

// Encode renders a bill as tagged lines in the persisted order: header pairs,
// a blank separator, the column labels, the item rows, a blank separator and
// the grand-total footer.
func Encode(b Bill) []Line {
	lines := []Line{
		{Kind: KindHeader, Label: labelBillNumber, Value: b.Number},
		{Kind: KindHeader, Label: labelDate, Value: b.IssuedAt.Format(issuedAtLayout)},
		{Kind: KindBlank},
		{Kind: KindColumnLabels, Fields: columnLabels},
	}
	for _, item := range b.Items {
		lines = append(lines, Line{Kind: KindItem, Fields: []string{
			item.ItemCode,
			item.InternalPrice.String(),
			item.Discount.String(),
			item.SalePrice.String(),
			strconv.Itoa(item.Quantity),
			item.LineTotal.String(),
		}})
	}
	lines = append(lines,
		Line{Kind: KindBlank},
		Line{Kind: KindFooter, Label: labelGrandTotal, Value: b.GrandTotal.String()},
	)
	return lines
}

// Rows flattens tagged lines into CSV rows.
func Rows(lines []Line) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		switch line.Kind {
		case KindBlank:
			rows = append(rows, []string{})
		case KindHeader, KindFooter:
			rows = append(rows, []string{line.Label, line.Value})
		default:
			rows = append(rows, line.Fields)
		}
	}
	return rows
}

// Classify tags raw record rows. Blank separator rows may already have been
// dropped by the CSV reader; classification does not rely on them.
func Classify(rows [][]string) []Line {
	lines := make([]Line, 0, len(rows))
	inItems := false
	for _, row := range rows {
		switch {
		case len(row) == 0 || (len(row) == 1 && row[0] == ""):
			lines = append(lines, Line{Kind: KindBlank})
		case row[0] == columnLabels[0]:
			inItems = true
			lines = append(lines, Line{Kind: KindColumnLabels, Fields: row})
		case row[0] == labelGrandTotal:
			inItems = false
			line := Line{Kind: KindFooter, Label: row[0]}
			if len(row) > 1 {
				line.Value = row[1]
			}
			lines = append(lines, line)
		case inItems:
			lines = append(lines, Line{Kind: KindItem, Fields: row})
		default:
			line := Line{Kind: KindHeader, Label: row[0]}
			if len(row) > 1 {
				line.Value = row[1]
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// Decode reconstructs a bill from its persisted rows. Item rows that do not
// parse are skipped rather than failing the whole record, since the store may
// hold files written by other tools.
func Decode(number string, rows [][]string) Bill {
	b := Bill{Number: number}
	for _, line := range Classify(rows) {
		switch line.Kind {
		case KindHeader:
			switch line.Label {
			case labelBillNumber:
				if line.Value != "" {
					b.Number = line.Value
				}
			case labelDate:
				if t, err := time.Parse(issuedAtLayout, line.Value); err == nil {
					b.IssuedAt = t
				}
			}
		case KindItem:
			if item, ok := decodeItem(line.Fields); ok {
				b.Items = append(b.Items, item)
			}
		case KindFooter:
			if total, err := money.Parse(line.Value); err == nil {
				b.GrandTotal = total
			}
		}
	}
	return b
}

func decodeItem(fields []string) (basket.LineItem, bool) {
	if len(fields) < 6 {
		return basket.LineItem{}, false
	}
	var (
		item basket.LineItem
		err  error
	)
	item.ItemCode = fields[0]
	if item.InternalPrice, err = money.Parse(fields[1]); err != nil {
		return basket.LineItem{}, false
	}
	if item.Discount, err = money.Parse(fields[2]); err != nil {
		return basket.LineItem{}, false
	}
	if item.SalePrice, err = money.Parse(fields[3]); err != nil {
		return basket.LineItem{}, false
	}
	if item.Quantity, err = strconv.Atoi(fields[4]); err != nil {
		return basket.LineItem{}, false
	}
	if item.LineTotal, err = money.Parse(fields[5]); err != nil {
		return basket.LineItem{}, false
	}
	return item, true
}

// ItemRows returns the raw item rows of a persisted record, classified by the
// same rule Decode uses.
func ItemRows(rows [][]string) [][]string {
	var items [][]string
	for _, line := range Classify(rows) {
		if line.Kind == KindItem {
			items = append(items, line.Fields)
		}
	}
	return items
}
