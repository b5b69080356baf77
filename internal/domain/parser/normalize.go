package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	countryCodeRe = regexp.MustCompile(`\s+[A-Z]{2}$`)
)

// normalizeDescription collapses whitespace runs and strips a single
// trailing two-letter country code from the cleaned copy. The raw form is
// preserved verbatim for audit.
func normalizeDescription(desc string) (cleaned, raw string) {
	raw = strings.TrimSpace(desc)
	cleaned = whitespaceRe.ReplaceAllString(raw, " ")
	cleaned = countryCodeRe.ReplaceAllString(cleaned, "")
	return cleaned, raw
}

// inferDate resolves a DD/MM token against the statement's year/month
// anchor. A token month greater than the statement month belongs to the
// previous year (cross-year rows on early-year statements). Invalid
// calendar dates yield nil.
func inferDate(dayMonth string, stmtYear, stmtMonth int) *time.Time {
	parts := strings.Split(dayMonth, "/")
	if len(parts) != 2 {
		return nil
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}

	year := stmtYear
	if month > stmtMonth {
		year--
	}

	if month < 1 || month > 12 || day < 1 {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) {
		// time.Date normalizes overflow (e.g. 31 Apr -> 1 May)
		return nil
	}
	return &d
}
