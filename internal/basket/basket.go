// Package basket implements the in-memory, single-operator basket of line
// items. Line numbers are positional and 1-based: removing a line shifts the
// lines after it down, so numbers never have gaps.
package basket

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/cupcakehq/pos/internal/money"
)

// ErrInvalidItemCode indicates an item code outside the allowed pattern.
var ErrInvalidItemCode = errors.New("invalid item code: use only letters, numbers and underscores")

// ErrLineNotFound indicates a line number outside the basket's range.
var ErrLineNotFound = errors.New("line not found")

// InvalidValueError reports a numeric field that failed validation.
type InvalidValueError struct {
	Field string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s", e.Field)
}

var itemCodePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidItemCode reports whether code matches the allowed item code pattern.
func ValidItemCode(code string) bool {
	return itemCodePattern.MatchString(code)
}

// LineItem is one product entry with pricing, quantity and a derived total.
// LineTotal is always recomputed from its inputs, never set directly.
type LineItem struct {
	ItemCode      string
	InternalPrice decimal.Decimal
	Discount      decimal.Decimal
	SalePrice     decimal.Decimal
	Quantity      int
	LineTotal     decimal.Decimal
}

// AddInput carries the operator-supplied fields for a new line item.
type AddInput struct {
	ItemCode      string          `json:"item_code" validate:"required,itemcode"`
	InternalPrice decimal.Decimal `json:"internal_price" validate:"gte=0"`
	Discount      decimal.Decimal `json:"discount" validate:"gte=0"`
	SalePrice     decimal.Decimal `json:"sale_price" validate:"gte=0"`
	Quantity      int             `json:"quantity" validate:"gt=0"`
}

// UpdateInput carries optional replacement values for an existing line item.
// Nil fields keep their prior value.
type UpdateInput struct {
	SalePrice *decimal.Decimal
	Discount  *decimal.Decimal
	Quantity  *int
}

// Snapshot is a read-only copy of the basket contents.
type Snapshot struct {
	Items      []LineItem
	GrandTotal decimal.Decimal
}

// Basket holds the current transaction's line items until a bill is issued.
type Basket struct {
	items    []LineItem
	validate *validator.Validate
}

// New returns an empty basket.
func New() *Basket {
	return &Basket{validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("itemcode", func(fl validator.FieldLevel) bool {
		return ValidItemCode(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("json"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// Len returns the number of lines in the basket.
func (b *Basket) Len() int {
	return len(b.items)
}

// Add validates the input, computes the line total and appends a new line.
// Repeated item codes create separate lines; nothing is merged.
func (b *Basket) Add(input AddInput) (LineItem, error) {
	if err := b.check(input); err != nil {
		return LineItem{}, err
	}
	item := LineItem{
		ItemCode:      input.ItemCode,
		InternalPrice: input.InternalPrice,
		Discount:      input.Discount,
		SalePrice:     input.SalePrice,
		Quantity:      input.Quantity,
		LineTotal:     money.LineTotal(input.SalePrice, input.Discount, input.Quantity),
	}
	b.items = append(b.items, item)
	return item, nil
}

// Update replaces the provided fields of the given line and recomputes its
// total under the same validation rules as Add.
func (b *Basket) Update(line int, input UpdateInput) (LineItem, error) {
	if line < 1 || line > len(b.items) {
		return LineItem{}, ErrLineNotFound
	}
	current := b.items[line-1]
	next := current
	if input.SalePrice != nil {
		next.SalePrice = *input.SalePrice
	}
	if input.Discount != nil {
		next.Discount = *input.Discount
	}
	if input.Quantity != nil {
		next.Quantity = *input.Quantity
	}
	if err := b.check(AddInput{
		ItemCode:      next.ItemCode,
		InternalPrice: next.InternalPrice,
		Discount:      next.Discount,
		SalePrice:     next.SalePrice,
		Quantity:      next.Quantity,
	}); err != nil {
		return LineItem{}, err
	}
	next.LineTotal = money.LineTotal(next.SalePrice, next.Discount, next.Quantity)
	b.items[line-1] = next
	return next, nil
}

// Remove deletes the given line and returns it. Subsequent lines shift down.
func (b *Basket) Remove(line int) (LineItem, error) {
	if line < 1 || line > len(b.items) {
		return LineItem{}, ErrLineNotFound
	}
	removed := b.items[line-1]
	b.items = append(b.items[:line-1], b.items[line:]...)
	return removed, nil
}

// Snapshot returns a copy of the current lines and their grand total.
func (b *Basket) Snapshot() Snapshot {
	items := make([]LineItem, len(b.items))
	copy(items, b.items)
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return Snapshot{Items: items, GrandTotal: total}
}

// Clear empties the basket. Callers invoke it only after a bill write
// succeeded; a failed issue must leave the basket intact.
func (b *Basket) Clear() {
	b.items = nil
}

func (b *Basket) check(input AddInput) error {
	err := b.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "itemcode" || fe.Field() == "item_code" {
			return ErrInvalidItemCode
		}
		return &InvalidValueError{Field: fe.Field()}
	}
	return err
}
