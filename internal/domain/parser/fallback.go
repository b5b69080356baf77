package parser

import (
	"strings"
	"time"

	"github.com/ledgerline/statements/pkg/money"
)

// fallbackDateFormats are the absolute date layouts tried against the first
// column of a candidate row.
var fallbackDateFormats = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
}

// FallbackExtractor is the best-effort tabular extractor used when the
// specialized parser does not apply. It produces a reduced field set: one
// transaction date, description and amount, plus the original cells.
type FallbackExtractor struct{}

// NewFallbackExtractor creates a generic extractor.
func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// Extract tries a layout-based strategy first and, if it yields nothing, a
// stream-based one. Strategy failures are swallowed; the result may be
// empty, which callers treat as a valid outcome.
func (e *FallbackExtractor) Extract(data []byte) []Row {
	if cells, err := extractCellRows(data); err == nil {
		if rows := rowsFromCells(cells); len(rows) > 0 {
			return rows
		}
	}

	lines, err := extractLines(data)
	if err != nil {
		return nil
	}
	return rowsFromLines(lines)
}

// rowsFromCells interprets each visual row's cells as date, description,
// amount columns. A row is usable when description and amount resolve.
func rowsFromCells(cellRows [][]string) []Row {
	var rows []Row
	for _, cells := range cellRows {
		if len(cells) < 3 {
			continue
		}

		desc := strings.TrimSpace(cells[1])
		if desc == "" {
			continue
		}
		amountMinor, err := money.ParseStatementAmount(cells[2], false)
		if err != nil {
			continue
		}

		rows = append(rows, Row{
			Source:          SourceGeneric,
			TransactionDate: coerceDate(cells[0]),
			Description:     desc,
			AmountMinor:     amountMinor,
			Raw:             cells,
		})
	}
	return rows
}

// rowsFromLines splits each line on whitespace: first field is tried as a
// date, last field as the amount, the remainder is the description.
func rowsFromLines(lines []string) []Row {
	var rows []Row
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		amountMinor, err := money.ParseStatementAmount(fields[len(fields)-1], false)
		if err != nil {
			continue
		}
		desc := strings.Join(fields[1:len(fields)-1], " ")
		if desc == "" {
			continue
		}

		rows = append(rows, Row{
			Source:          SourceGeneric,
			TransactionDate: coerceDate(fields[0]),
			Description:     desc,
			AmountMinor:     amountMinor,
			Raw:             []string{line},
		})
	}
	return rows
}

func coerceDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range fallbackDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			d = d.UTC()
			return &d
		}
	}
	return nil
}
