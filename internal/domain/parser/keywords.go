package parser

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// KeywordEntry maps an uppercase merchant keyword to a category and an
// optional subcategory.
type KeywordEntry struct {
	Keyword     string
	Category    string
	Subcategory string
}

// KeywordMapper resolves a transaction description to a category using an
// ordered keyword table. The first entry whose keyword is a substring of
// the uppercased description wins; iteration order is the table's
// definition order, not alphabetical.
//
// Matching uses an Aho-Corasick automaton so every keyword is checked in a
// single pass; definition-order priority is preserved by taking the
// lowest-index hit.
type KeywordMapper struct {
	mu      sync.RWMutex
	entries []KeywordEntry
	matcher *ahocorasick.Matcher
}

// NewKeywordMapper builds a mapper from an ordered entry list. Keywords are
// uppercased; empty keywords are dropped.
func NewKeywordMapper(entries []KeywordEntry) *KeywordMapper {
	m := &KeywordMapper{}
	m.Build(entries)
	return m
}

// Build replaces the mapper's table. Safe to call concurrently with Lookup.
func (m *KeywordMapper) Build(entries []KeywordEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make([]KeywordEntry, 0, len(entries))
	patterns := make([][]byte, 0, len(entries))
	for _, e := range entries {
		keyword := strings.ToUpper(strings.TrimSpace(e.Keyword))
		if keyword == "" {
			continue
		}
		e.Keyword = keyword
		m.entries = append(m.entries, e)
		patterns = append(patterns, []byte(keyword))
	}

	if len(patterns) > 0 {
		m.matcher = ahocorasick.NewMatcher(patterns)
	} else {
		m.matcher = nil
	}
}

// Lookup returns the first entry (in definition order) whose keyword is a
// substring of the description. The description is uppercased before
// matching.
func (m *KeywordMapper) Lookup(description string) (KeywordEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.matcher == nil {
		return KeywordEntry{}, false
	}

	hits := m.matcher.Match([]byte(strings.ToUpper(description)))
	if len(hits) == 0 {
		return KeywordEntry{}, false
	}

	best := -1
	for _, idx := range hits {
		if idx >= 0 && idx < len(m.entries) && (best == -1 || idx < best) {
			best = idx
		}
	}
	if best == -1 {
		return KeywordEntry{}, false
	}
	return m.entries[best], true
}

// Len returns the number of entries in the table.
func (m *KeywordMapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// DefaultKeywords is the built-in merchant table for Maybank statements.
// Order matters: earlier entries take precedence (SHOPEE-EC would otherwise
// never be reachable past SHOPEE, so the more specific keyword comes first).
func DefaultKeywords() []KeywordEntry {
	return []KeywordEntry{
		{Keyword: "SETEL", Category: "Fuel"},
		{Keyword: "99 SPEEDMART", Category: "Groceries"},
		{Keyword: "WATSON", Category: "Personal Care"},
		{Keyword: "LOTUS'S", Category: "Groceries"},
		{Keyword: "AEON SMKT", Category: "Groceries"},
		{Keyword: "AEON", Category: "Groceries"},
		{Keyword: "MCDONALDS", Category: "Dining"},
		{Keyword: "KRISPY KREME", Category: "Dining"},
		{Keyword: "AUNTIE ANNE", Category: "Dining"},
		{Keyword: "SHOPEE-EC", Category: "Shopping"},
		{Keyword: "SHOPEE", Category: "Shopping"},
		{Keyword: "SPAYLATER", Category: "Loan"},
		{Keyword: "TNG-EWALLET", Category: "E-Wallet"},
		{Keyword: "BIGPAY", Category: "E-Wallet"},
		{Keyword: "PYMT@MAYBANK2U.COM", Category: "Payment"},
		{Keyword: "CASH REBATE", Category: "Rebate"},
		{Keyword: "APPLE.COM/BILL", Category: "Subscriptions"},
		{Keyword: "HACKTHEBOX", Category: "Subscriptions"},
		{Keyword: "THAI CHICKEN RICE", Category: "Dining"},
	}
}
