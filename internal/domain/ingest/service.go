// Package ingest orchestrates statement processing: parse, persist with
// dedup, classify, and record the statement's terminal status.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ledgerline/statements/internal/domain/parser"
	"github.com/ledgerline/statements/internal/domain/statement"
	"github.com/ledgerline/statements/internal/metrics"
)

// RowParser converts statement PDF bytes into transaction rows.
type RowParser interface {
	Parse(data []byte) []parser.Row
}

// Reclassifier runs the rule engine over a statement's transactions, or
// over everything when statementID is nil.
type Reclassifier interface {
	Reapply(ctx context.Context, statementID *uuid.UUID) (int, error)
}

// Result summarizes one statement's ingestion.
type Result struct {
	RowsParsed     int
	RowsInserted   int
	RowsDuplicate  int
	RowsRejected   int
	RowsClassified int
}

// Service is the ingestion pipeline.
type Service struct {
	parser RowParser
	repo   statement.Repository
	rules  Reclassifier
	logger *slog.Logger
}

// NewService creates an ingestion pipeline
func NewService(rowParser RowParser, repo statement.Repository, rules Reclassifier, logger *slog.Logger) *Service {
	return &Service{
		parser: rowParser,
		repo:   repo,
		rules:  rules,
		logger: logger,
	}
}

// Process ingests one statement's PDF bytes. Per-row anomalies (missing
// dates, duplicate rows, rejected rows) are absorbed here; only a
// non-recoverable failure marks the statement failed, with the message
// captured on the record. Success transitions the statement to processed
// and clears any prior error.
func (s *Service) Process(ctx context.Context, statementID uuid.UUID, data []byte) (*Result, error) {
	if err := s.repo.SetStatementStatus(ctx, statementID, statement.StatusProcessing, nil); err != nil {
		return nil, s.fail(ctx, statementID, fmt.Errorf("failed to mark statement processing: %w", err))
	}

	result, err := s.ingest(ctx, statementID, data)
	if err != nil {
		return nil, s.fail(ctx, statementID, err)
	}

	if err := s.repo.SetStatementStatus(ctx, statementID, statement.StatusProcessed, nil); err != nil {
		return nil, s.fail(ctx, statementID, fmt.Errorf("failed to mark statement processed: %w", err))
	}

	metrics.StatementsProcessed.WithLabelValues(string(statement.StatusProcessed)).Inc()
	s.logger.Info("statement processed",
		slog.String("statement_id", statementID.String()),
		slog.Int("rows_parsed", result.RowsParsed),
		slog.Int("rows_inserted", result.RowsInserted),
		slog.Int("rows_duplicate", result.RowsDuplicate),
		slog.Int("rows_rejected", result.RowsRejected),
	)
	return result, nil
}

func (s *Service) ingest(ctx context.Context, statementID uuid.UUID, data []byte) (*Result, error) {
	rows := s.parser.Parse(data)
	result := &Result{RowsParsed: len(rows)}

	txs := make([]*statement.Transaction, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		metrics.RowsParsed.WithLabelValues(string(row.Source)).Inc()

		tx, err := s.buildTransaction(ctx, statementID, row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	outcomes, err := s.repo.InsertTransactions(ctx, txs)
	if err != nil {
		return nil, err
	}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case statement.InsertInserted:
			result.RowsInserted++
		case statement.InsertDuplicate:
			result.RowsDuplicate++
			metrics.RowsDuplicate.Inc()
		case statement.InsertRejected:
			result.RowsRejected++
			metrics.RowsRejected.Inc()
			s.logger.Warn("row rejected during persistence",
				slog.String("statement_id", statementID.String()),
				slog.String("reason", outcome.Reason),
			)
		}
	}

	classified, err := s.rules.Reapply(ctx, &statementID)
	if err != nil {
		return nil, err
	}
	result.RowsClassified = classified

	return result, nil
}

func (s *Service) buildTransaction(ctx context.Context, statementID uuid.UUID, row *parser.Row) (*statement.Transaction, error) {
	tx := &statement.Transaction{
		StatementID: statementID,
		TxnDate:     row.TransactionDate,
		PostDate:    row.PostingDate,
		Description: row.Description,
		AmountMinor: row.AmountMinor,
	}

	if row.DescriptionRaw != "" {
		raw := row.DescriptionRaw
		tx.DescriptionRaw = &raw
	}
	if row.Subcategory != "" {
		sub := row.Subcategory
		tx.Subcategory = &sub
	}

	if row.Category != "" {
		cat, err := s.repo.GetOrCreateCategory(ctx, row.Category)
		if err != nil {
			return nil, err
		}
		tx.CategoryID = &cat.ID
	}

	rawRow, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw row: %w", err)
	}
	tx.RawRow = rawRow

	return tx, nil
}

// fail records the terminal failure on the statement. There is no retry;
// operators re-trigger ingestion manually.
func (s *Service) fail(ctx context.Context, statementID uuid.UUID, cause error) error {
	msg := cause.Error()
	if err := s.repo.SetStatementStatus(ctx, statementID, statement.StatusFailed, &msg); err != nil {
		s.logger.Error("failed to record statement failure",
			slog.String("statement_id", statementID.String()),
			slog.Any("error", err),
		)
	}
	metrics.StatementsProcessed.WithLabelValues(string(statement.StatusFailed)).Inc()
	s.logger.Error("statement ingestion failed",
		slog.String("statement_id", statementID.String()),
		slog.Any("error", cause),
	)
	return cause
}
