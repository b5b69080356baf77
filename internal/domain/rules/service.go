package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ledgerline/statements/internal/domain/statement"
)

// CategoryResolver lazily creates categories referenced by new rules.
type CategoryResolver interface {
	GetOrCreateCategory(ctx context.Context, name string) (*statement.Category, error)
}

// Service wires the rule engine to storage: rule CRUD with lazy category
// creation, and transactional bulk reclassification.
type Service struct {
	db         statement.DB
	repo       Repository
	categories CategoryResolver
	logger     *slog.Logger
}

// NewService creates a rules service
func NewService(db statement.DB, repo Repository, categories CategoryResolver, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// CreateRule stores a new rule. When a category name is given the category
// is resolved or lazily created.
func (s *Service) CreateRule(ctx context.Context, pattern string, priority int, categoryName string, subcategory *string) (*Rule, error) {
	if pattern == "" {
		return nil, fmt.Errorf("rule pattern must not be empty")
	}

	rule := &Rule{
		Pattern:     pattern,
		Priority:    priority,
		Subcategory: subcategory,
		Status:      RuleActive,
	}

	if categoryName != "" {
		cat, err := s.categories.GetOrCreateCategory(ctx, categoryName)
		if err != nil {
			return nil, err
		}
		rule.CategoryID = &cat.ID
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns all rules in evaluation order.
func (s *Service) ListRules(ctx context.Context) ([]Rule, error) {
	return s.repo.List(ctx)
}

// GetRule fetches a single rule by id.
func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*Rule, error) {
	return s.repo.Get(ctx, id)
}

// SetRuleStatus toggles a rule active or inactive.
func (s *Service) SetRuleStatus(ctx context.Context, id uuid.UUID, status RuleStatus) error {
	if status != RuleActive && status != RuleInactive {
		return fmt.Errorf("invalid rule status %q", status)
	}
	return s.repo.SetStatus(ctx, id, status)
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Reapply runs the engine over every transaction of one statement, or over
// all transactions when statementID is nil. The full read set and all
// updates happen inside one transaction, and re-running it with the same
// rules and descriptions produces identical assignments.
func (s *Service) Reapply(ctx context.Context, statementID *uuid.UUID) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reapply transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ruleSet, err := loadRules(ctx, tx)
	if err != nil {
		return 0, err
	}
	engine := NewEngine(ruleSet)

	rows, err := tx.Query(ctx, `
		SELECT id, description, category_id, subcategory
		FROM transactions
		WHERE $1::uuid IS NULL OR statement_id = $1`, statementID)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	type pending struct {
		id          uuid.UUID
		categoryID  *uuid.UUID
		subcategory *string
	}
	var updates []pending

	for rows.Next() {
		var txn statement.Transaction
		if err := rows.Scan(&txn.ID, &txn.Description, &txn.CategoryID, &txn.Subcategory); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if matched := engine.Classify(&txn); matched != nil {
			updates = append(updates, pending{id: txn.ID, categoryID: txn.CategoryID, subcategory: txn.Subcategory})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read transactions: %w", err)
	}

	for _, u := range updates {
		if _, err := tx.Exec(ctx,
			`UPDATE transactions SET category_id = $2, subcategory = $3 WHERE id = $1`,
			u.id, u.categoryID, u.subcategory,
		); err != nil {
			return 0, fmt.Errorf("failed to update transaction %s: %w", u.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit reapply: %w", err)
	}

	s.logger.Info("rules reapplied",
		slog.Int("active_rules", engine.Len()),
		slog.Int("classified", len(updates)),
	)
	return len(updates), nil
}
