package statement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code raised by the dedup index.
const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new statement repository
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateStatement inserts a new statement in the uploaded state
func (r *PostgresRepository) CreateStatement(ctx context.Context, filename string) (*Statement, error) {
	query := `
		INSERT INTO statements (id, filename, status)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	stmt := &Statement{
		ID:       uuid.New(),
		Filename: filename,
		Status:   StatusUploaded,
	}

	if err := r.db.QueryRow(ctx, query, stmt.ID, stmt.Filename, stmt.Status).Scan(&stmt.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create statement: %w", err)
	}
	return stmt, nil
}

// GetStatement retrieves a statement by ID
func (r *PostgresRepository) GetStatement(ctx context.Context, id uuid.UUID) (*Statement, error) {
	query := `
		SELECT id, filename, status, error_message, created_at
		FROM statements
		WHERE id = $1`

	stmt := &Statement{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&stmt.ID,
		&stmt.Filename,
		&stmt.Status,
		&stmt.ErrorMessage,
		&stmt.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return stmt, nil
}

// ListStatements returns all statements, newest first
func (r *PostgresRepository) ListStatements(ctx context.Context) ([]*Statement, error) {
	query := `
		SELECT id, filename, status, error_message, created_at
		FROM statements
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer rows.Close()

	var stmts []*Statement
	for rows.Next() {
		stmt := &Statement{}
		if err := rows.Scan(&stmt.ID, &stmt.Filename, &stmt.Status, &stmt.ErrorMessage, &stmt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}

// SetStatementStatus transitions a statement's lifecycle state. The error
// message is cleared unless one is provided.
func (r *PostgresRepository) SetStatementStatus(ctx context.Context, id uuid.UUID, status Status, errorMessage *string) error {
	query := `
		UPDATE statements
		SET status = $2, error_message = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to update statement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteStatement removes a statement; its transactions cascade
func (r *PostgresRepository) DeleteStatement(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM statements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StatementExists reports whether a statement row is present.
func (r *PostgresRepository) StatementExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM statements WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check statement: %w", err)
	}
	return exists, nil
}

// InsertTransactions persists parsed rows one by one so a duplicate or
// rejected row never aborts the rest of the batch.
func (r *PostgresRepository) InsertTransactions(ctx context.Context, txs []*Transaction) ([]InsertOutcome, error) {
	query := `
		INSERT INTO transactions
			(id, statement_id, txn_date, post_date, description, description_raw,
			 amount_minor, category_id, subcategory, raw_row, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (statement_id, txn_date, description, amount_minor) DO NOTHING
		RETURNING id`

	outcomes := make([]InsertOutcome, 0, len(txs))
	for _, tx := range txs {
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}

		var insertedID uuid.UUID
		err := r.db.QueryRow(ctx, query,
			tx.ID,
			tx.StatementID,
			tx.TxnDate,
			tx.PostDate,
			tx.Description,
			tx.DescriptionRaw,
			tx.AmountMinor,
			tx.CategoryID,
			tx.Subcategory,
			tx.RawRow,
			tx.ExternalID,
		).Scan(&insertedID)

		switch {
		case err == nil:
			outcomes = append(outcomes, InsertOutcome{Status: InsertInserted, TransactionID: insertedID})
		case errors.Is(err, pgx.ErrNoRows):
			// The ON CONFLICT clause swallowed the row: dedup guard hit.
			outcomes = append(outcomes, InsertOutcome{Status: InsertDuplicate})
		default:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				outcomes = append(outcomes, InsertOutcome{Status: InsertDuplicate})
				continue
			}
			outcomes = append(outcomes, InsertOutcome{Status: InsertRejected, Reason: err.Error()})
		}
	}

	return outcomes, nil
}

// ListTransactions returns transactions, optionally filtered by statement
func (r *PostgresRepository) ListTransactions(ctx context.Context, statementID *uuid.UUID) ([]*Transaction, error) {
	query := `
		SELECT id, statement_id, txn_date, post_date, description, description_raw,
		       amount_minor, category_id, subcategory, raw_row, external_id, created_at
		FROM transactions
		WHERE $1::uuid IS NULL OR statement_id = $1
		ORDER BY txn_date NULLS LAST, created_at`

	rows, err := r.db.Query(ctx, query, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		tx := &Transaction{}
		if err := rows.Scan(
			&tx.ID,
			&tx.StatementID,
			&tx.TxnDate,
			&tx.PostDate,
			&tx.Description,
			&tx.DescriptionRaw,
			&tx.AmountMinor,
			&tx.CategoryID,
			&tx.Subcategory,
			&tx.RawRow,
			&tx.ExternalID,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetOrCreateCategory lazily creates a category by name. The upsert makes
// concurrent lazy creation by independent workers safe.
func (r *PostgresRepository) GetOrCreateCategory(ctx context.Context, name string) (*Category, error) {
	query := `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	cat := &Category{}
	err := r.db.QueryRow(ctx, query, uuid.New(), name).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create category %q: %w", name, err)
	}
	return cat, nil
}

// ListCategories returns all categories ordered by name
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*Category, error) {
	query := `SELECT id, name, created_at FROM categories ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []*Category
	for rows.Next() {
		cat := &Category{}
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}
