// Package storage provides file storage for uploaded statement PDFs.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	StatementID uuid.UUID `json:"statement_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for statement file operations
type Storage interface {
	// Save stores the uploaded file for a statement and returns its metadata
	Save(ctx context.Context, statementID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Read returns the stored bytes for a statement
	Read(ctx context.Context, statementID uuid.UUID) ([]byte, error)

	// Delete removes the stored file for a statement
	Delete(ctx context.Context, statementID uuid.UUID) error

	// List returns metadata for every stored file
	List(ctx context.Context) ([]*FileInfo, error)
}
