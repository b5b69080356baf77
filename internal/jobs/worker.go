package jobs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ledgerline/statements/internal/domain/ingest"
	"github.com/ledgerline/statements/internal/domain/statement"
)

// Ingestor runs the ingestion pipeline for one statement.
type Ingestor interface {
	Process(ctx context.Context, statementID uuid.UUID, data []byte) (*ingest.Result, error)
}

// FileReader fetches a statement's stored PDF bytes.
type FileReader interface {
	Read(ctx context.Context, statementID uuid.UUID) ([]byte, error)
}

// StatusSetter records a terminal statement status.
type StatusSetter interface {
	SetStatementStatus(ctx context.Context, id uuid.UUID, status statement.Status, errorMessage *string) error
}

// Worker consumes parse jobs and drives the ingestion pipeline. One
// statement is processed at a time per worker; independent workers share no
// mutable state beyond the database.
type Worker struct {
	queue      *Queue
	ingestor   Ingestor
	files      FileReader
	statements StatusSetter
	logger     *slog.Logger
	done       chan struct{}
}

// NewWorker creates a worker bound to a queue
func NewWorker(queue *Queue, ingestor Ingestor, files FileReader, statements StatusSetter, logger *slog.Logger) *Worker {
	return &Worker{
		queue:      queue,
		ingestor:   ingestor,
		files:      files,
		statements: statements,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins consuming jobs in a background goroutine.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		w.logger.Info("statement worker started")

		for job := range w.queue.jobs {
			w.process(ctx, job)
		}

		w.logger.Info("statement worker stopped")
	}()
}

// Wait blocks until the worker has drained the closed queue.
func (w *Worker) Wait() {
	<-w.done
}

func (w *Worker) process(ctx context.Context, job ParseStatementJob) {
	l := w.logger.With(slog.String("statement_id", job.StatementID.String()))
	l.Info("statement processing started")

	data, err := w.files.Read(ctx, job.StatementID)
	if err != nil {
		// The pipeline never ran; record the failure here.
		msg := err.Error()
		if serr := w.statements.SetStatementStatus(ctx, job.StatementID, statement.StatusFailed, &msg); serr != nil {
			l.Error("failed to record statement failure", slog.Any("error", serr))
		}
		l.Error("failed to read statement file", slog.Any("error", err))
		return
	}

	if _, err := w.ingestor.Process(ctx, job.StatementID, data); err != nil {
		// Process has already marked the statement failed.
		l.Error("statement processing failed", slog.Any("error", err))
		return
	}

	l.Info("statement processing finished")
}
