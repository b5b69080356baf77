package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem.
// Each statement gets one data file plus a JSON metadata sidecar.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save stores the uploaded file for a statement and returns its metadata
func (s *LocalStorage) Save(ctx context.Context, statementID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	safeFilename := sanitizeFilename(filename)
	storedFilename := fmt.Sprintf("%s_%s", statementID.String(), safeFilename)
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		StatementID: statementID,
		Name:        safeFilename,
		Size:        size,
		ContentType: contentType,
		Path:        filePath,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.writeMeta(info); err != nil {
		os.Remove(filePath)
		return nil, err
	}

	return info, nil
}

// Read returns the stored bytes for a statement
func (s *LocalStorage) Read(ctx context.Context, statementID uuid.UUID) ([]byte, error) {
	info, err := s.readMeta(statementID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(info.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes the stored file for a statement
func (s *LocalStorage) Delete(ctx context.Context, statementID uuid.UUID) error {
	info, err := s.readMeta(statementID)
	if err != nil {
		return err
	}

	if err := os.Remove(info.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(s.metaPath(statementID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// List returns metadata for every stored file
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	var infos []*FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}
		var info FileInfo
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}
		infos = append(infos, &info)
	}
	return infos, nil
}

func (s *LocalStorage) metaPath(statementID uuid.UUID) string {
	return filepath.Join(s.basePath, statementID.String()+".meta.json")
}

func (s *LocalStorage) writeMeta(info *FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(info.StatementID), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) readMeta(statementID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(statementID))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &info, nil
}

// sanitizeFilename removes path separators and other unsafe characters
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "statement.pdf"
	}
	return name
}
