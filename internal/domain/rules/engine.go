package rules

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledgerline/statements/internal/domain/statement"
)

// Engine evaluates an ordered, active-only rule set against transaction
// descriptions. Build once per rule set; Classify is then a linear scan in
// evaluation order.
type Engine struct {
	ordered []Rule
}

// NewEngine filters the rule set to active rules and fixes the evaluation
// order: priority ascending, then creation time, then ID.
func NewEngine(ruleSet []Rule) *Engine {
	ordered := make([]Rule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if r.Status == RuleActive {
			ordered = append(ordered, r)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return bytes.Compare(ordered[i].ID[:], ordered[j].ID[:]) < 0
	})

	return &Engine{ordered: ordered}
}

// Classify assigns the first matching rule's category and subcategory to
// the transaction and returns that rule. When nothing matches the
// transaction's existing classification is left untouched and nil is
// returned.
func (e *Engine) Classify(tx *statement.Transaction) *Rule {
	desc := strings.ToLower(tx.Description)
	for i := range e.ordered {
		r := &e.ordered[i]
		if r.Pattern == "" {
			continue
		}
		if strings.Contains(desc, strings.ToLower(r.Pattern)) {
			tx.CategoryID = r.CategoryID
			tx.Subcategory = r.Subcategory
			return r
		}
	}
	return nil
}

// Len returns the number of active rules in evaluation order.
func (e *Engine) Len() int {
	return len(e.ordered)
}
