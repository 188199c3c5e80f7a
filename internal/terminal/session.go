// Package terminal implements the interactive operator surface: a fixed menu
// dispatched over stdin/stdout. All retry loops and formatting live here; the
// core packages only expose typed operations.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cupcakehq/pos/internal/basket"
	"github.com/cupcakehq/pos/internal/bill"
	"github.com/cupcakehq/pos/internal/money"
	"github.com/cupcakehq/pos/internal/tax"
)

// Session drives one operator session over a line-based terminal.
type Session struct {
	In      *bufio.Scanner
	Out     io.Writer
	Basket  *basket.Basket
	Bills   *bill.Service
	Tax     *tax.Service
	TaxRate decimal.Decimal
	Log     zerolog.Logger
}

// Run shows the menu until the operator exits or input ends. Storage
// failures are reported and the loop continues; only the exit choice or EOF
// terminates the session.
func (s *Session) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(s.Out)
		fmt.Fprintln(s.Out, "===== Cupcake POS =====")
		fmt.Fprintln(s.Out, "1. Add to basket")
		fmt.Fprintln(s.Out, "2. Delete item from basket")
		fmt.Fprintln(s.Out, "3. Update item")
		fmt.Fprintln(s.Out, "4. Generate bill")
		fmt.Fprintln(s.Out, "5. Search bill")
		fmt.Fprintln(s.Out, "6. Generate tax file")
		fmt.Fprintln(s.Out, "7. Audit tax file")
		fmt.Fprintln(s.Out, "8. Final tax due")
		fmt.Fprintln(s.Out, "0. Exit")

		choice, ok := s.prompt("Enter your choice: ")
		if !ok {
			return nil
		}
		switch strings.TrimSpace(choice) {
		case "1":
			s.addItems()
		case "2":
			s.deleteItem()
		case "3":
			s.updateItem()
		case "4":
			s.generateBill(ctx)
		case "5":
			s.searchBill(ctx)
		case "6":
			s.generateTaxFile(ctx)
		case "7":
			s.auditTaxFile(ctx)
		case "8":
			s.finalTax(ctx)
		case "0":
			fmt.Fprintln(s.Out, "Exiting. Thank you!")
			return nil
		default:
			fmt.Fprintln(s.Out, "Invalid choice. Please try again.")
		}
	}
}

func (s *Session) prompt(label string) (string, bool) {
	fmt.Fprint(s.Out, label)
	if !s.In.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.In.Text()), true
}

func (s *Session) addItems() {
	for {
		fmt.Fprintln(s.Out, "\n--- Add Item to Basket ---")
		input, ok := s.readAddInput()
		if !ok {
			return
		}
		if _, err := s.Basket.Add(input); err != nil {
			fmt.Fprintf(s.Out, "Invalid input: %v\n", err)
			continue
		}
		s.renderBasket()
		more, ok := s.prompt("\nAdd more items? (1 for yes, 0 to finish): ")
		if !ok || more != "1" {
			return
		}
	}
}

func (s *Session) readAddInput() (basket.AddInput, bool) {
	var input basket.AddInput
	for {
		code, ok := s.prompt("Enter item code (e.g. Lemon_01): ")
		if !ok {
			return input, false
		}
		if basket.ValidItemCode(code) {
			input.ItemCode = code
			break
		}
		fmt.Fprintln(s.Out, "Invalid item code. Use only letters, numbers and underscores.")
	}
	var ok bool
	if input.InternalPrice, ok = s.readAmount("Enter internal price: "); !ok {
		return input, false
	}
	if input.Discount, ok = s.readAmount("Enter discount amount: "); !ok {
		return input, false
	}
	if input.SalePrice, ok = s.readAmount("Enter sale price: "); !ok {
		return input, false
	}
	if input.Quantity, ok = s.readQuantity("Enter quantity: "); !ok {
		return input, false
	}
	return input, true
}

func (s *Session) readAmount(label string) (decimal.Decimal, bool) {
	for {
		raw, ok := s.prompt(label)
		if !ok {
			return decimal.Zero, false
		}
		d, err := money.Parse(raw)
		if err != nil {
			fmt.Fprintln(s.Out, "Please enter a valid amount.")
			continue
		}
		return d, true
	}
}

func (s *Session) readQuantity(label string) (int, bool) {
	for {
		raw, ok := s.prompt(label)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(s.Out, "Please enter a whole number.")
			continue
		}
		return n, true
	}
}

func (s *Session) deleteItem() {
	if s.Basket.Len() == 0 {
		fmt.Fprintln(s.Out, "\nBasket is empty. Nothing to delete.")
		return
	}
	s.renderBasket()
	line, ok := s.readQuantity("\nEnter line number to delete: ")
	if !ok {
		return
	}
	removed, err := s.Basket.Remove(line)
	if err != nil {
		fmt.Fprintf(s.Out, "%v\n", err)
		return
	}
	fmt.Fprintf(s.Out, "Deleted item: %s\n", removed.ItemCode)
	s.renderBasket()
}

func (s *Session) updateItem() {
	if s.Basket.Len() == 0 {
		fmt.Fprintln(s.Out, "\nBasket is empty. Nothing to update.")
		return
	}
	s.renderBasket()
	line, ok := s.readQuantity("\nEnter line number to update: ")
	if !ok {
		return
	}
	snap := s.Basket.Snapshot()
	if line < 1 || line > len(snap.Items) {
		fmt.Fprintln(s.Out, "Invalid line number.")
		return
	}
	current := snap.Items[line-1]
	fmt.Fprintf(s.Out, "\nUpdating item: %s\n", current.ItemCode)

	var patch basket.UpdateInput
	if d, set, ok := s.readOptionalAmount(fmt.Sprintf("Enter new sale price [%s]: ", current.SalePrice)); !ok {
		return
	} else if set {
		patch.SalePrice = &d
	}
	if d, set, ok := s.readOptionalAmount(fmt.Sprintf("Enter new discount [%s]: ", current.Discount)); !ok {
		return
	} else if set {
		patch.Discount = &d
	}
	if n, set, ok := s.readOptionalQuantity(fmt.Sprintf("Enter new quantity [%d]: ", current.Quantity)); !ok {
		return
	} else if set {
		patch.Quantity = &n
	}

	if _, err := s.Basket.Update(line, patch); err != nil {
		fmt.Fprintf(s.Out, "Invalid input: %v\n", err)
		return
	}
	fmt.Fprintln(s.Out, "Item updated.")
	s.renderBasket()
}

func (s *Session) readOptionalAmount(label string) (decimal.Decimal, bool, bool) {
	for {
		raw, ok := s.prompt(label)
		if !ok {
			return decimal.Zero, false, false
		}
		if raw == "" {
			return decimal.Zero, false, true
		}
		d, err := money.Parse(raw)
		if err != nil {
			fmt.Fprintln(s.Out, "Please enter a valid amount.")
			continue
		}
		return d, true, true
	}
}

func (s *Session) readOptionalQuantity(label string) (int, bool, bool) {
	for {
		raw, ok := s.prompt(label)
		if !ok {
			return 0, false, false
		}
		if raw == "" {
			return 0, false, true
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(s.Out, "Please enter a whole number.")
			continue
		}
		return n, true, true
	}
}

func (s *Session) generateBill(ctx context.Context) {
	issued, err := s.Bills.Issue(ctx, s.Basket.Snapshot())
	if err != nil {
		if errors.Is(err, bill.ErrEmptyBasket) {
			fmt.Fprintln(s.Out, "\nBasket is empty. Cannot generate bill.")
			return
		}
		s.Log.Error().Err(err).Msg("issue bill")
		fmt.Fprintf(s.Out, "Error saving bill: %v\n", err)
		return
	}
	fmt.Fprintln(s.Out, "\n--- Bill Generated ---")
	fmt.Fprintf(s.Out, "Bill Number: %s\n", issued.Number)
	s.renderBasket()
	fmt.Fprintf(s.Out, "\nGrand Total: %s\n", issued.GrandTotal)
	// Only a confirmed write releases the basket.
	s.Basket.Clear()
}

func (s *Session) searchBill(ctx context.Context) {
	number, ok := s.prompt("Enter bill number to search: ")
	if !ok {
		return
	}
	_, rows, err := s.Bills.Find(ctx, number)
	if err != nil {
		if errors.Is(err, bill.ErrNotFound) {
			fmt.Fprintf(s.Out, "Bill #%s not found.\n", number)
			return
		}
		s.Log.Error().Err(err).Str("bill_number", number).Msg("search bill")
		fmt.Fprintf(s.Out, "Error reading bill: %v\n", err)
		return
	}
	fmt.Fprintf(s.Out, "\n--- Bill #%s ---\n", number)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		fmt.Fprintln(s.Out, strings.Join(row, " | "))
	}
}

func (s *Session) generateTaxFile(ctx context.Context) {
	key, records, err := s.Tax.GenerateRollup(ctx)
	if err != nil {
		if errors.Is(err, tax.ErrNoBills) {
			fmt.Fprintln(s.Out, "\nNo bills found. Cannot generate tax file.")
			return
		}
		s.Log.Error().Err(err).Msg("generate tax rollup")
		fmt.Fprintf(s.Out, "Error generating tax file: %v\n", err)
		return
	}
	fmt.Fprintf(s.Out, "Tax file generated: %s (%d transaction lines)\n", key, len(records))
}

func (s *Session) auditTaxFile(ctx context.Context) {
	key, records, err := s.Tax.AuditRollup(ctx, "")
	if err != nil {
		if errors.Is(err, tax.ErrNoRollups) {
			fmt.Fprintln(s.Out, "\nNo tax files found. Generate one first.")
			return
		}
		s.Log.Error().Err(err).Msg("audit tax rollup")
		fmt.Fprintf(s.Out, "Error auditing tax file: %v\n", err)
		return
	}
	counts := tax.CountRecords(records)
	fmt.Fprintf(s.Out, "\n--- Audit of %s ---\n", key)
	fmt.Fprintf(s.Out, "Records: %d total, %d valid, %d invalid\n", counts.Total, counts.Valid, counts.Invalid)
	for _, rec := range records {
		if rec.Valid {
			continue
		}
		fmt.Fprintf(s.Out, "INVALID: %s %s (checksum expected %d)\n", rec.BillNumber, rec.ItemCode, rec.Checksum)
	}
}

func (s *Session) finalTax(ctx context.Context) {
	due, err := s.Tax.FinalTaxFromBills(ctx, s.TaxRate)
	if err != nil {
		if errors.Is(err, tax.ErrNoBills) {
			fmt.Fprintln(s.Out, "\nNo bills found. Nothing to tax.")
			return
		}
		s.Log.Error().Err(err).Msg("compute final tax")
		fmt.Fprintf(s.Out, "Error computing final tax: %v\n", err)
		return
	}
	fmt.Fprintf(s.Out, "\nFinal tax due at %s%%: %s\n", s.TaxRate, due)
}

func (s *Session) renderBasket() {
	snap := s.Basket.Snapshot()
	if len(snap.Items) == 0 {
		fmt.Fprintln(s.Out, "\nBasket is empty.")
		return
	}
	fmt.Fprintln(s.Out, "\n--- Current Basket ---")
	w := tabwriter.NewWriter(s.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Line\tItem Code\tInt. Price\tDiscount\tSale Price\tQuantity\tLine Total")
	for i, item := range snap.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i+1, item.ItemCode, item.InternalPrice, item.Discount, item.SalePrice, item.Quantity, item.LineTotal)
	}
	w.Flush()
	fmt.Fprintf(s.Out, "Grand Total: %s\n", snap.GrandTotal)
}
