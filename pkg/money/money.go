// Package money provides fixed-point handling of statement amounts.
// Amounts are carried as integer minor units (sen for MYR) so the dedup
// key and all arithmetic are exact; shopspring/decimal does the parsing.
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MYR is the currency of the supported statement format.
const MYR = "MYR"

// ErrNoAmount indicates the token did not contain a parsable numeric value.
var ErrNoAmount = errors.New("money: no parsable amount")

var (
	currencyPrefixRe = regexp.MustCompile(`(?i)^(RM|MYR|\$)\s*`)
	creditSuffixRe   = regexp.MustCompile(`(?i)CR$`)
)

// ParseStatementAmount converts a raw amount token into signed minor units.
// Debits are positive, credits negative. A value is a credit when the
// explicitCredit flag is set (the caller saw a CR marker outside the token),
// the token carries its own trailing CR, or the token is parenthesized.
// A leading minus sign is otherwise honored as-is.
func ParseStatementAmount(token string, explicitCredit bool) (int64, error) {
	s := strings.TrimSpace(token)
	s = strings.ReplaceAll(s, ",", "")
	s = currencyPrefixRe.ReplaceAllString(s, "")

	credit := explicitCredit
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		credit = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if creditSuffixRe.MatchString(s) {
		credit = true
		s = strings.TrimSpace(creditSuffixRe.ReplaceAllString(s, ""))
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNoAmount
	}

	minor := d.Shift(2).Round(0).IntPart()
	if credit || negative {
		minor = -minor
	}
	return minor, nil
}

// FromMinor converts minor units to a decimal value with two fraction digits.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Display renders minor units using the currency's conventional format,
// e.g. -950 -> "-RM9.50".
func Display(minor int64, currencyCode string) string {
	return money.New(minor, currencyCode).Display()
}
