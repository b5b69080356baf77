package rules

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/statements/internal/domain/statement"
)

func activeRule(pattern string, priority int, createdAt time.Time, categoryID *uuid.UUID, subcategory *string) Rule {
	return Rule{
		ID:          uuid.New(),
		Pattern:     pattern,
		Priority:    priority,
		CategoryID:  categoryID,
		Subcategory: subcategory,
		Status:      RuleActive,
		CreatedAt:   createdAt,
	}
}

func TestEngine_PriorityOrdering(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	catLow := uuid.New()
	catHigh := uuid.New()
	catLate := uuid.New()

	// Three rules all matching "coffee": priority 1 beats priority 2, and
	// among the priority-1 ties the earliest-created rule wins.
	ruleSet := []Rule{
		activeRule("coffee", 2, base.Add(2*time.Hour), &catHigh, nil),
		activeRule("coffee", 1, base.Add(3*time.Hour), &catLate, nil),
		activeRule("coffee", 1, base.Add(1*time.Hour), &catLow, strP("Morning")),
	}

	engine := NewEngine(ruleSet)
	tx := &statement.Transaction{Description: "STARBUCKS COFFEE KLCC"}

	matched := engine.Classify(tx)
	require.NotNil(t, matched)
	assert.Equal(t, 1, matched.Priority)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, catLow, *tx.CategoryID)
	require.NotNil(t, tx.Subcategory)
	assert.Equal(t, "Morning", *tx.Subcategory)
}

func TestEngine_InactiveRulesSkipped(t *testing.T) {
	cat := uuid.New()
	inactive := activeRule("coffee", 1, time.Now(), &cat, nil)
	inactive.Status = RuleInactive

	engine := NewEngine([]Rule{inactive})
	assert.Equal(t, 0, engine.Len())

	tx := &statement.Transaction{Description: "COFFEE SHOP"}
	assert.Nil(t, engine.Classify(tx))
	assert.Nil(t, tx.CategoryID)
}

func TestEngine_CaseInsensitiveSubstring(t *testing.T) {
	cat := uuid.New()
	engine := NewEngine([]Rule{activeRule("NeTfLiX", 10, time.Now(), &cat, nil)})

	tx := &statement.Transaction{Description: "payment to netflix.com"}
	require.NotNil(t, engine.Classify(tx))
	assert.Equal(t, cat, *tx.CategoryID)
}

func TestEngine_NoMatchLeavesClassificationUntouched(t *testing.T) {
	existing := uuid.New()
	sub := "Kept"
	engine := NewEngine([]Rule{activeRule("groceries", 1, time.Now(), nil, nil)})

	tx := &statement.Transaction{
		Description: "TOTALLY UNRELATED",
		CategoryID:  &existing,
		Subcategory: &sub,
	}

	assert.Nil(t, engine.Classify(tx))
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, existing, *tx.CategoryID)
	require.NotNil(t, tx.Subcategory)
	assert.Equal(t, "Kept", *tx.Subcategory)
}

func TestEngine_FirstMatchStopsEvaluation(t *testing.T) {
	base := time.Now()
	catFirst := uuid.New()
	catSecond := uuid.New()

	engine := NewEngine([]Rule{
		activeRule("shop", 1, base, &catFirst, nil),
		activeRule("shopee", 2, base, &catSecond, strP("should not apply")),
	})

	tx := &statement.Transaction{Description: "SHOPEE-EC ORDER"}
	matched := engine.Classify(tx)
	require.NotNil(t, matched)
	assert.Equal(t, catFirst, *tx.CategoryID)
	assert.Nil(t, tx.Subcategory)
}

func TestEngine_ClassifyIsIdempotent(t *testing.T) {
	cat := uuid.New()
	engine := NewEngine([]Rule{activeRule("setel", 5, time.Now(), &cat, strP("Petrol"))})

	tx := &statement.Transaction{Description: "SETEL JALAN AMPANG"}
	require.NotNil(t, engine.Classify(tx))
	firstCat := *tx.CategoryID
	firstSub := *tx.Subcategory

	require.NotNil(t, engine.Classify(tx))
	assert.Equal(t, firstCat, *tx.CategoryID)
	assert.Equal(t, firstSub, *tx.Subcategory)
}

func strP(s string) *string { return &s }
