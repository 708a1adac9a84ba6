package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// currencyExpr finds an amount marked by a symbol or a code
	currencyExpr = regexp.MustCompile(`(?:([$€£¥])|\b(USD|EUR|GBP|CAD|AUD|JPY))\s?(\d[\d,]*(?:\.\d+)?)|(\d[\d,]*(?:\.\d+)?)\s?(USD|EUR|GBP|CAD|AUD|JPY)\b`)
	// amountExpr finds a bare amount
	amountExpr = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// countedExpr matches a word right after a bare amount, as in "3 nights"
	countedExpr = regexp.MustCompile(`^\s*\pL`)
)

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// DefaultCurrency is used when the text carries no symbol
const DefaultCurrency = "$"

// ParseMoney extracts the first amount in text with its currency symbol.
// Amounts marked with a currency win over bare numbers. A bare number followed
// by a word counts something else ("3 nights") and is not money.
func ParseMoney(text string) (decimal.Decimal, string, bool) {
	var number, symbol string
	if m := currencyExpr.FindStringSubmatch(text); m != nil {
		switch {
		case m[1] != "":
			number, symbol = m[3], m[1]
		case m[2] != "":
			number, symbol = m[3], currencySymbols[m[2]]
		default:
			number, symbol = m[4], currencySymbols[m[5]]
		}
	} else if loc := amountExpr.FindStringIndex(text); loc != nil && !countedExpr.MatchString(text[loc[1]:]) {
		number = text[loc[0]:loc[1]]
	}
	if number == "" {
		return decimal.Zero, "", false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(number, ",", ""))
	if err != nil {
		return decimal.Zero, "", false
	}
	if symbol == "" {
		symbol = DefaultCurrency
	}
	return amount, symbol, true
}

// NormalizeMoney renders the first amount in text as symbol plus two decimals,
// e.g. "Total: USD 1,234.5" becomes "$1234.50". Text without an amount yields "".
func NormalizeMoney(text string) string {
	amount, symbol, ok := ParseMoney(text)
	if !ok {
		return ""
	}
	return FormatMoney(amount, symbol)
}

// FormatMoney renders amount with two decimals
func FormatMoney(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}
