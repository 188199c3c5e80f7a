// Package bill issues immutable bill records with monotonic per-day sequence
// numbers and reads them back from the bill store.
package bill

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cupcakehq/pos/internal/basket"
	"github.com/cupcakehq/pos/internal/store"
)

// ErrEmptyBasket is returned when issuing a bill from an empty basket.
var ErrEmptyBasket = errors.New("basket is empty")

// ErrNotFound indicates no persisted bill matches the requested number.
var ErrNotFound = errors.New("bill not found")

// Bill is an immutable record of a completed transaction.
type Bill struct {
	Number     string
	IssuedAt   time.Time
	Items      []basket.LineItem
	GrandTotal decimal.Decimal
}

// Service issues and retrieves bills.
type Service struct {
	Store *store.BillStore
	Now   func() time.Time
	Log   zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue freezes a basket snapshot into a bill, allocates the next number for
// today and persists the record. The write is atomic: on failure no file is
// left behind and the caller must keep its basket.
func (s *Service) Issue(ctx context.Context, snap basket.Snapshot) (Bill, error) {
	if len(snap.Items) == 0 {
		return Bill{}, ErrEmptyBasket
	}
	existing, err := s.Store.List()
	if err != nil {
		return Bill{}, err
	}
	issuedAt := s.now()
	b := Bill{
		Number:     NextNumber(issuedAt, existing),
		IssuedAt:   issuedAt,
		Items:      snap.Items,
		GrandTotal: snap.GrandTotal,
	}
	if err := s.Store.Write(b.Number, Rows(Encode(b))); err != nil {
		return Bill{}, err
	}
	s.Log.Info().
		Str("bill_number", b.Number).
		Int("items", len(b.Items)).
		Str("grand_total", b.GrandTotal.String()).
		Msg("bill issued")
	return b, nil
}

// Find returns the persisted bill for number along with its raw record rows
// for display.
func (s *Service) Find(ctx context.Context, number string) (Bill, [][]string, error) {
	rows, err := s.Store.Read(number)
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return Bill{}, nil, ErrNotFound
		}
		return Bill{}, nil, err
	}
	return Decode(number, rows), rows, nil
}
