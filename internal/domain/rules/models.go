// Package rules implements operator-defined keyword classification of
// transactions: an ordered substring rule engine plus its storage and
// bulk-reapply service.
package rules

import (
	"time"

	"github.com/google/uuid"
)

// RuleStatus toggles a rule without deleting it.
type RuleStatus string

const (
	RuleActive   RuleStatus = "active"
	RuleInactive RuleStatus = "inactive"
)

// Rule classifies transactions whose description contains Pattern
// (case-insensitive). Lower Priority runs first; CreatedAt then ID break
// ties deterministically.
type Rule struct {
	ID          uuid.UUID  `json:"id"`
	Pattern     string     `json:"pattern"`
	Priority    int        `json:"priority"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Subcategory *string    `json:"subcategory,omitempty"`
	Status      RuleStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}
