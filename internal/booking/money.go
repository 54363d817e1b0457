package booking

import (
	"errors"
	"fmt"
	"math"
)

// FormatEuro renders cents the way guests read prices: €40,00.
func FormatEuro(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s€%d,%02d", sign, cents/100, cents%100)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// ErrAmountOutOfRange is returned when a price line would not fit in int64
// cents.
var ErrAmountOutOfRange = errors.New("amount out of range")

// mulCents multiplies a unit price by a non-negative quantity, refusing
// results that overflow.
func mulCents(price int64, qty int64) (int64, error) {
	if price < 0 || qty < 0 {
		return 0, ErrAmountOutOfRange
	}
	if qty != 0 && price > math.MaxInt64/qty {
		return 0, ErrAmountOutOfRange
	}
	return price * qty, nil
}

// addCents adds two non-negative amounts, refusing overflow.
func addCents(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, ErrAmountOutOfRange
	}
	return a + b, nil
}
