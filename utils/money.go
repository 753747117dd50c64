package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice formats an amount as a string like "$12.500", rounded to whole pesos.
// Uses dot as thousands separator.
func FormatPrice(amount decimal.Decimal) string {
	return formatPesos(amount.Round(0).IntPart())
}

func formatPesos(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 2)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
