// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer minor units so report totals reconcile exactly
// with the sum of the displayed line items. Decimal strings are parsed and
// formatted with shopspring/decimal at a per-currency precision.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of fractional digits used when a currency
// does not say otherwise.
const DefaultPrecision int32 = 2

type (
	// Money is an amount in minor units of its currency (cents for EUR).
	Money struct {
		Minor int64
	}

	Currency struct {
		Code      string
		Precision int32
	}
)

var (
	EUR = Currency{Code: "EUR", Precision: 2}

	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

func (m Money) Validate() error {
	if m.Minor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Minor: m.Minor + o.Minor}
}

func (m Money) IsZero() bool {
	return m.Minor == 0
}

// Decimal returns the amount as a decimal with the given number of
// fractional digits.
func (m Money) Decimal(precision int32) decimal.Decimal {
	return decimal.New(m.Minor, -precision)
}

// Format renders the amount with exactly precision fractional digits,
// e.g. Money{1250}.Format(2) == "12.50".
func (m Money) Format(precision int32) string {
	return m.Decimal(precision).StringFixed(precision)
}

// ParseAmount converts a decimal string to minor units with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// rejected; zero is accepted since the save rule lives in Money.Validate.
//
// Examples (precision 2):
//
//	ParseAmount("12.34", 2)  -> Money{1234}, nil
//	ParseAmount("12,345", 2) -> Money{1235}, nil
//	ParseAmount(".5", 2)     -> Money{50}, nil
func ParseAmount(s string, precision int32) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return Money{}, ErrInvalidAmount
		}
	}
	if s == "." {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	minor := d.Round(precision).Shift(precision)
	if minor.GreaterThan(maxMinor) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Minor: minor.IntPart()}, nil
}

// ParseCurrency resolves a currency code; unknown codes get DefaultPrecision.
func ParseCurrency(code string, precision int32) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = EUR.Code
	}
	if precision < 0 {
		precision = DefaultPrecision
	}
	return Currency{Code: code, Precision: precision}
}

// Format renders m in this currency, e.g. "EUR 12.50".
func (c Currency) Format(m Money) string {
	return c.Code + " " + m.Format(c.Precision)
}
