// Package money provides an exact-decimal accumulator for revenue sums.
// Aggregations add many small amounts; accumulating in binary floats drifts,
// so sums run through apd and convert to float64 only at the row boundary.
package money

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

var ctx = apd.BaseContext.WithPrecision(34)

// Amount is an immutable decimal value. The zero Amount is zero dollars.
type Amount struct {
	value apd.Decimal
}

// Parse reads a decimal string such as "12.99".
func Parse(s string) (Amount, error) {
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

// FromFloat converts a float64, rounding through its shortest decimal form
// so 12.99 stays 12.99 rather than its binary neighbor.
func FromFloat(f float64) Amount {
	a, err := Parse(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return Amount{}
	}
	return a
}

// FromInt converts an integer count.
func FromInt(i int64) Amount {
	var d apd.Decimal
	d.SetInt64(i)
	return Amount{value: d}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	var result apd.Decimal
	ctx.Add(&result, &a.value, &b.value)
	return Amount{value: result}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	var result apd.Decimal
	ctx.Sub(&result, &a.value, &b.value)
	return Amount{value: result}
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) Amount {
	var result apd.Decimal
	ctx.Mul(&result, &a.value, &b.value)
	return Amount{value: result}
}

// Div returns a / b, or zero when b is zero.
func (a Amount) Div(b Amount) Amount {
	if b.value.IsZero() {
		return Amount{}
	}
	var result apd.Decimal
	ctx.Quo(&result, &a.value, &b.value)
	return Amount{value: result}
}

// Cmp compares a against b: -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.value.Cmp(&b.value)
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// Float64 converts to float64 for JSON rows and chart feeds.
func (a Amount) Float64() float64 {
	f, err := a.value.Float64()
	if err != nil {
		return 0
	}
	return f
}

// String renders the exact decimal form.
func (a Amount) String() string {
	return a.value.String()
}

// Sum folds a slice of float amounts through decimal addition.
func Sum(values []float64) Amount {
	var total Amount
	for _, v := range values {
		total = total.Add(FromFloat(v))
	}
	return total
}
