package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const displayDateLayout = "2006-01-02"

// FormatCurrency renders an amount as dollars with thousands separators and
// two decimals, e.g. 1200 -> "$1,200.00".
func FormatCurrency(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")
	return "$" + sign + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func FormatDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// FormatValue renders a record value as plain text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return FormatDate(val)
	case float64:
		return decimal.NewFromFloat(val).String()
	default:
		return fmt.Sprint(val)
	}
}

func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p * 100).StringFixed(1) + "%"
}

// TitleCase turns "policy annual premium" or "policy_annual_premium" into
// "Policy Annual Premium".
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
