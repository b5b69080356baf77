// Package statement holds the persisted model for statements, their
// transactions and the category table, plus the Postgres repository.
package statement

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the statement processing lifecycle state.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// Statement is one uploaded document and its processing lifecycle.
type Statement struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	Status       Status    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction is one parsed financial line item belonging to a statement.
// Amounts are signed minor units: debits positive, credits negative.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	StatementID    uuid.UUID       `json:"statement_id"`
	TxnDate        *time.Time      `json:"txn_date,omitempty"`
	PostDate       *time.Time      `json:"post_date,omitempty"`
	Description    string          `json:"description"`
	DescriptionRaw *string         `json:"description_raw,omitempty"`
	AmountMinor    int64           `json:"amount_minor"`
	CategoryID     *uuid.UUID      `json:"category_id,omitempty"`
	Subcategory    *string         `json:"subcategory,omitempty"`
	RawRow         json.RawMessage `json:"raw_row,omitempty"`
	ExternalID     *string         `json:"external_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Category is a named classification bucket, unique by name.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertStatus reports how a single row fared during batch persistence.
type InsertStatus string

const (
	InsertInserted  InsertStatus = "inserted"
	InsertDuplicate InsertStatus = "duplicate"
	InsertRejected  InsertStatus = "rejected"
)

// InsertOutcome is the per-row result of InsertTransactions.
type InsertOutcome struct {
	Status        InsertStatus
	TransactionID uuid.UUID // set when Status == InsertInserted
	Reason        string    // set when Status == InsertRejected
}
