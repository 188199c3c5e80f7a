package basket_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cupcakehq/pos/internal/basket"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validInput() basket.AddInput {
	return basket.AddInput{
		ItemCode:      "Lemon_01",
		InternalPrice: d("5.00"),
		Discount:      d("0.50"),
		SalePrice:     d("9.99"),
		Quantity:      3,
	}
}

func TestAddComputesLineTotal(t *testing.T) {
	b := basket.New()
	item, err := b.Add(validInput())
	require.NoError(t, err)
	require.Equal(t, "28.47", item.LineTotal.String())

	snap := b.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, "28.47", snap.GrandTotal.String())
}

func TestAddRejectsBadItemCode(t *testing.T) {
	b := basket.New()
	for _, code := range []string{"", "lemon 01", "lemon-01", "lemon!"} {
		input := validInput()
		input.ItemCode = code
		_, err := b.Add(input)
		require.ErrorIs(t, err, basket.ErrInvalidItemCode, "code %q", code)
	}
	require.Zero(t, b.Len())
}

func TestAddRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(*basket.AddInput)
		field string
	}{
		{"negative internal price", func(in *basket.AddInput) { in.InternalPrice = d("-1") }, "internal_price"},
		{"negative discount", func(in *basket.AddInput) { in.Discount = d("-0.01") }, "discount"},
		{"negative sale price", func(in *basket.AddInput) { in.SalePrice = d("-9.99") }, "sale_price"},
		{"zero quantity", func(in *basket.AddInput) { in.Quantity = 0 }, "quantity"},
		{"negative quantity", func(in *basket.AddInput) { in.Quantity = -2 }, "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := basket.New()
			input := validInput()
			tc.tweak(&input)
			_, err := b.Add(input)
			var invalid *basket.InvalidValueError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, tc.field, invalid.Field)
			require.Zero(t, b.Len())
		})
	}
}

func TestAddDoesNotMergeRepeatedCodes(t *testing.T) {
	b := basket.New()
	_, err := b.Add(validInput())
	require.NoError(t, err)
	_, err = b.Add(validInput())
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	b := basket.New()
	_, err := b.Add(validInput())
	require.NoError(t, err)

	newPrice := d("12.00")
	item, err := b.Update(1, basket.UpdateInput{SalePrice: &newPrice})
	require.NoError(t, err)
	require.Equal(t, "12", item.SalePrice.String())
	require.Equal(t, "0.5", item.Discount.String())
	require.Equal(t, 3, item.Quantity)
	require.Equal(t, "34.5", item.LineTotal.String())
}

func TestUpdateValidatesLikeAdd(t *testing.T) {
	b := basket.New()
	_, err := b.Add(validInput())
	require.NoError(t, err)

	bad := d("-1")
	_, err = b.Update(1, basket.UpdateInput{SalePrice: &bad})
	var invalid *basket.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "sale_price", invalid.Field)

	// Failed update leaves the line untouched.
	snap := b.Snapshot()
	require.Equal(t, "9.99", snap.Items[0].SalePrice.String())
}

func TestUpdateOutOfRange(t *testing.T) {
	b := basket.New()
	_, err := b.Update(1, basket.UpdateInput{})
	require.ErrorIs(t, err, basket.ErrLineNotFound)

	_, err = b.Add(validInput())
	require.NoError(t, err)
	_, err = b.Update(0, basket.UpdateInput{})
	require.ErrorIs(t, err, basket.ErrLineNotFound)
	_, err = b.Update(2, basket.UpdateInput{})
	require.ErrorIs(t, err, basket.ErrLineNotFound)
}

func TestRemoveShiftsLines(t *testing.T) {
	b := basket.New()
	for _, code := range []string{"First_1", "Second_2", "Third_3"} {
		input := validInput()
		input.ItemCode = code
		_, err := b.Add(input)
		require.NoError(t, err)
	}

	removed, err := b.Remove(2)
	require.NoError(t, err)
	require.Equal(t, "Second_2", removed.ItemCode)

	snap := b.Snapshot()
	require.Len(t, snap.Items, 2)
	require.Equal(t, "First_1", snap.Items[0].ItemCode)
	require.Equal(t, "Third_3", snap.Items[1].ItemCode)

	_, err = b.Remove(3)
	require.ErrorIs(t, err, basket.ErrLineNotFound)
}

func TestSnapshotDoesNotAliasState(t *testing.T) {
	b := basket.New()
	_, err := b.Add(validInput())
	require.NoError(t, err)

	snap := b.Snapshot()
	snap.Items[0].ItemCode = "Mutated"
	require.Equal(t, "Lemon_01", b.Snapshot().Items[0].ItemCode)
}

func TestClear(t *testing.T) {
	b := basket.New()
	_, err := b.Add(validInput())
	require.NoError(t, err)
	b.Clear()
	require.Zero(t, b.Len())
	require.Empty(t, b.Snapshot().Items)
}

func TestInvalidValueErrorMessage(t *testing.T) {
	err := &basket.InvalidValueError{Field: "quantity"}
	require.Contains(t, err.Error(), "quantity")
}
