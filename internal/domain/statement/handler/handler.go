// Package handler exposes the statement and transaction HTTP endpoints.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/statements/internal/api"
	"github.com/ledgerline/statements/internal/domain/statement"
	"github.com/ledgerline/statements/internal/jobs"
	"github.com/ledgerline/statements/pkg/money"
	"github.com/ledgerline/statements/pkg/storage"
)

// Enqueuer hands accepted statements to the parse worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, job jobs.ParseStatementJob) error
}

// Handler serves the statement upload and query endpoints.
type Handler struct {
	repo         statement.Repository
	files        storage.Storage
	queue        Enqueuer
	maxSizeBytes int64
	logger       *slog.Logger
}

func New(repo statement.Repository, files storage.Storage, queue Enqueuer, maxSizeBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		files:        files,
		queue:        queue,
		maxSizeBytes: maxSizeBytes,
		logger:       logger,
	}
}

// Register wires the statement routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/statements", h.Upload)
	mux.HandleFunc("GET /api/statements", h.List)
	mux.HandleFunc("GET /api/statements/{id}", h.Get)
	mux.HandleFunc("DELETE /api/statements/{id}", h.Delete)
	mux.HandleFunc("GET /api/statements/{id}/transactions", h.StatementTransactions)
	mux.HandleFunc("GET /api/transactions", h.Transactions)
	mux.HandleFunc("GET /api/categories", h.Categories)
}

type uploadResponse struct {
	ID       uuid.UUID        `json:"id"`
	Filename string           `json:"filename"`
	Status   statement.Status `json:"status"`
}

// Upload accepts a multipart PDF, stores it, records the statement as
// uploaded and queues it for parsing.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes)
	if err := r.ParseMultipartForm(h.maxSizeBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.WriteError(w, http.StatusRequestEntityTooLarge, "file exceeds upload size limit")
			return
		}
		api.WriteError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/pdf" {
		api.WriteError(w, http.StatusUnsupportedMediaType, "only application/pdf uploads are accepted")
		return
	}
	if header.Filename != "" && !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		api.WriteError(w, http.StatusUnsupportedMediaType, "only .pdf files are accepted")
		return
	}

	stmt, err := h.repo.CreateStatement(ctx, header.Filename)
	if err != nil {
		h.logger.Error("failed to create statement", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to create statement")
		return
	}

	if _, err := h.files.Save(ctx, stmt.ID, header.Filename, "application/pdf", file); err != nil {
		h.logger.Error("failed to store upload", slog.String("statement_id", stmt.ID.String()), slog.Any("error", err))
		msg := "failed to store uploaded file"
		_ = h.repo.SetStatementStatus(ctx, stmt.ID, statement.StatusFailed, &msg)
		api.WriteError(w, http.StatusInternalServerError, msg)
		return
	}

	job := jobs.ParseStatementJob{StatementID: stmt.ID, EnqueuedAt: time.Now().UTC()}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		h.logger.Error("failed to enqueue statement", slog.String("statement_id", stmt.ID.String()), slog.Any("error", err))
		msg := "failed to queue statement for parsing"
		_ = h.repo.SetStatementStatus(ctx, stmt.ID, statement.StatusFailed, &msg)
		api.WriteError(w, http.StatusServiceUnavailable, msg)
		return
	}

	api.WriteJSON(w, http.StatusAccepted, uploadResponse{ID: stmt.ID, Filename: stmt.Filename, Status: stmt.Status})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	stmts, err := h.repo.ListStatements(r.Context())
	if err != nil {
		h.logger.Error("failed to list statements", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to list statements")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"statements": stmts})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid statement id")
		return
	}
	stmt, err := h.repo.GetStatement(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		api.WriteError(w, http.StatusNotFound, "statement not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get statement", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to get statement")
		return
	}
	api.WriteJSON(w, http.StatusOK, stmt)
}

// Delete removes a statement, its transactions and its stored file.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid statement id")
		return
	}
	if err := h.repo.DeleteStatement(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "statement not found")
			return
		}
		h.logger.Error("failed to delete statement", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to delete statement")
		return
	}
	if err := h.files.Delete(r.Context(), id); err != nil {
		h.logger.Warn("failed to delete stored file", slog.String("statement_id", id.String()), slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StatementTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid statement id")
		return
	}
	if _, err := h.repo.GetStatement(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "statement not found")
			return
		}
		h.logger.Error("failed to get statement", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to get statement")
		return
	}
	h.writeTransactions(w, r, &id)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	var statementID *uuid.UUID
	if raw := r.URL.Query().Get("statement_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid statement_id")
			return
		}
		statementID = &id
	}
	h.writeTransactions(w, r, statementID)
}

type transactionView struct {
	*statement.Transaction
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

func (h *Handler) writeTransactions(w http.ResponseWriter, r *http.Request, statementID *uuid.UUID) {
	txs, err := h.repo.ListTransactions(r.Context(), statementID)
	if err != nil {
		h.logger.Error("failed to list transactions", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, transactionView{
			Transaction:   tx,
			Amount:        money.FromMinor(tx.AmountMinor).StringFixed(2),
			AmountDisplay: money.Display(tx.AmountMinor, "MYR"),
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"transactions": views})
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"categories": cats})
}
