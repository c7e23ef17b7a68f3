// Package currency renders monetary amounts for display.
package currency

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale = "ro-MD"
	DefaultSuffix = "MDL"
)

// Default formats with Moldovan grouping and the MDL suffix.
var Default = NewFormatter(DefaultLocale, DefaultSuffix)

// Formatter is safe for concurrent use.
type Formatter struct {
	tag    language.Tag
	suffix string
}

// NewFormatter falls back to Romanian when locale does not parse.
func NewFormatter(locale, suffix string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Romanian
	}
	return Formatter{tag: tag, suffix: suffix}
}

// Format renders amount with two decimals, or three when the amount is not a
// whole number of cents. NaN and infinities render as zero.
func (f Formatter) Format(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return f.zero()
	}
	return f.FormatDecimal(decimal.NewFromFloat(amount))
}

// FormatString parses a textual amount; anything non-numeric renders as zero.
func (f Formatter) FormatString(amount string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return f.zero()
	}
	return f.FormatDecimal(d)
}

func (f Formatter) FormatDecimal(amount decimal.Decimal) string {
	places := Places(amount)
	rounded := amount.Round(places)
	p := message.NewPrinter(f.tag)
	return p.Sprintf("%v", number.Decimal(rounded.InexactFloat64(), number.Scale(int(places)))) + " " + f.suffix
}

func (f Formatter) zero() string {
	return f.FormatDecimal(decimal.Zero)
}

// Places is 2 for whole-cent amounts and 3 otherwise.
func Places(amount decimal.Decimal) int32 {
	if amount.Round(2).Equal(amount) {
		return 2
	}
	return 3
}

func Format(amount float64) string { return Default.Format(amount) }

func FormatString(amount string) string { return Default.FormatString(amount) }

func FormatDecimal(amount decimal.Decimal) string { return Default.FormatDecimal(amount) }
