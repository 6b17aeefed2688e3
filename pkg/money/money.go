package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders minor-unit amounts for display. The storefront prices in
// VND, which has no fractional unit, but the exponent is kept configurable so
// a cent-based currency renders correctly too.
type Formatter struct {
	Symbol   string
	Exponent int32
}

// VND is the storefront's default display formatter.
var VND = Formatter{Symbol: "₫", Exponent: 0}

// Decimal converts a minor-unit amount into its major-unit decimal value.
func (f Formatter) Decimal(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-f.Exponent)
}

// Format renders an amount as the symbol followed by a grouped number,
// e.g. 530000 -> "₫530,000".
func (f Formatter) Format(amount int64) string {
	value := f.Decimal(amount)

	text := value.StringFixed(f.Exponent)
	negative := strings.HasPrefix(text, "-")
	if negative {
		text = text[1:]
	}

	intPart := text
	fracPart := ""
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		intPart = text[:idx]
		fracPart = text[idx:]
	}

	grouped := groupThousands(intPart)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)
	b.WriteString(grouped)
	b.WriteString(fracPart)
	return b.String()
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
