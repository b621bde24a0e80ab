package money

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// ParseDecimal converts a spreadsheet-style amount into an exact decimal.
// Currency symbols, thousands separators and surrounding whitespace are
// tolerated: "$1,485.27" parses to 1485.27.
func ParseDecimal(input string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	if cleaned == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return value, nil
}

// Explicit layouts tried before falling back to dateparse. Spreadsheet dumps
// favour day-first forms that dateparse would otherwise read month-first.
var dateLayouts = []string{
	"2-Jan-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
}

// ParseDate accepts any common human date format: "Jan. 31, 2016",
// "11-Dec-2015", "2016-01-31" and so on.
func ParseDate(input string) (time.Time, error) {
	cleaned := stripMonthDots(strings.TrimSpace(input))
	if cleaned == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return parsed, nil
		}
	}
	parsed, err := dateparse.ParseAny(cleaned)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

// stripMonthDots drops the period from abbreviated month names ("Jan. 31")
// which no layout or parser accepts verbatim.
func stripMonthDots(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	prevLetter := false
	for _, r := range input {
		if r == '.' && prevLetter {
			prevLetter = false
			continue
		}
		prevLetter = r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
		b.WriteRune(r)
	}
	return b.String()
}

// SetDR returns the debit form of a value: positive by convention.
func SetDR(value decimal.Decimal) decimal.Decimal {
	return value.Abs()
}

// SetCR returns the credit form of a value: the sign flipped, so a positive
// input becomes a negative posting.
func SetCR(value decimal.Decimal) decimal.Decimal {
	return value.Neg()
}
