package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ledgerline/statements/internal/domain/statement"
)

// Repository persists classification rules.
type Repository interface {
	Create(ctx context.Context, rule *Rule) error
	List(ctx context.Context) ([]Rule, error)
	Get(ctx context.Context, id uuid.UUID) (*Rule, error)
	SetStatus(ctx context.Context, id uuid.UUID, status RuleStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db statement.DB
}

// NewPostgresRepository creates a new rule repository
func NewPostgresRepository(db statement.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new rule
func (r *PostgresRepository) Create(ctx context.Context, rule *Rule) error {
	query := `
		INSERT INTO rules (id, pattern, priority, category_id, subcategory, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.Status == "" {
		rule.Status = RuleActive
	}

	err := r.db.QueryRow(ctx, query,
		rule.ID,
		rule.Pattern,
		rule.Priority,
		rule.CategoryID,
		rule.Subcategory,
		rule.Status,
	).Scan(&rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// List returns all rules in evaluation order
func (r *PostgresRepository) List(ctx context.Context) ([]Rule, error) {
	rows, err := r.db.Query(ctx, listRulesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// Get retrieves a rule by ID
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Rule, error) {
	query := `
		SELECT id, pattern, priority, category_id, subcategory, status, created_at
		FROM rules
		WHERE id = $1`

	rule := &Rule{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.Pattern,
		&rule.Priority,
		&rule.CategoryID,
		&rule.Subcategory,
		&rule.Status,
		&rule.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// SetStatus toggles a rule between active and inactive
func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status RuleStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE rules SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update rule status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a rule
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const listRulesQuery = `
	SELECT id, pattern, priority, category_id, subcategory, status, created_at
	FROM rules
	ORDER BY priority, created_at, id`

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadRules(ctx context.Context, q queryer) ([]Rule, error) {
	rows, err := q.Query(ctx, listRulesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]Rule, error) {
	var ruleSet []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID,
			&rule.Pattern,
			&rule.Priority,
			&rule.CategoryID,
			&rule.Subcategory,
			&rule.Status,
			&rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		ruleSet = append(ruleSet, rule)
	}
	return ruleSet, rows.Err()
}
