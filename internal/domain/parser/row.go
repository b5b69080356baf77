// Package parser converts statement PDFs into structured transaction rows.
// A specialized parser handles the Maybank dual-language credit-card layout;
// a generic table extractor covers everything else.
package parser

import (
	"time"
)

// Source identifies which extractor produced a row.
type Source string

const (
	SourceMaybank Source = "maybank"
	SourceGeneric Source = "generic"
)

// Row is one parsed transaction. Description and AmountMinor are always
// present; the remaining fields depend on the source. Generic rows carry
// only TransactionDate, Description, AmountMinor and Raw.
type Row struct {
	Source          Source     `json:"source"`
	StatementMonth  string     `json:"statement_month,omitempty"` // YYYY-MM
	CardLast4       string     `json:"card_last4,omitempty"`
	PostingDate     *time.Time `json:"posting_date,omitempty"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	Description     string     `json:"description"`
	DescriptionRaw  string     `json:"description_raw,omitempty"`
	AmountMinor     int64      `json:"amount_minor"`
	Category        string     `json:"category,omitempty"`
	Subcategory     string     `json:"subcategory,omitempty"`
	Raw             []string   `json:"raw,omitempty"`
}

// OutcomeKind discriminates how a parse attempt ended.
type OutcomeKind int

const (
	// Matched means the document was recognized; Rows may still be empty.
	Matched OutcomeKind = iota
	// NotThisFormat means the document is not the parser's format.
	NotThisFormat
	// InternalError means the parser failed unexpectedly; Err is set.
	InternalError
)

// Outcome is the discriminated result of a specialized parse attempt.
type Outcome struct {
	Kind OutcomeKind
	Rows []Row
	Err  error
}

func matched(rows []Row) Outcome      { return Outcome{Kind: Matched, Rows: rows} }
func notThisFormat() Outcome          { return Outcome{Kind: NotThisFormat} }
func internalError(err error) Outcome { return Outcome{Kind: InternalError, Err: err} }
