package statement

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it too, which keeps repository tests database-free.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository persists statements, transactions and categories.
type Repository interface {
	CreateStatement(ctx context.Context, filename string) (*Statement, error)
	GetStatement(ctx context.Context, id uuid.UUID) (*Statement, error)
	ListStatements(ctx context.Context) ([]*Statement, error)
	SetStatementStatus(ctx context.Context, id uuid.UUID, status Status, errorMessage *string) error
	DeleteStatement(ctx context.Context, id uuid.UUID) error

	// InsertTransactions persists rows independently, honoring the
	// (statement, txn_date, description, amount) dedup guard. One outcome
	// is returned per input row, in order.
	InsertTransactions(ctx context.Context, txs []*Transaction) ([]InsertOutcome, error)
	ListTransactions(ctx context.Context, statementID *uuid.UUID) ([]*Transaction, error)

	GetOrCreateCategory(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}
