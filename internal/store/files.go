package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

// FileStore persists file metadata. Records are insert-only; there is no
// update or delete operation.
type FileStore struct {
	db *sql.DB
}

func NewFileStore(db *sql.DB) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) Insert(ctx context.Context, rec *model.FileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, orig_name, stored_name, content_type, size_bytes, object_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.OrigName, rec.StoredName, rec.ContentType, rec.SizeBytes, rec.ObjectKey, rec.UploadedBy)
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}
	return nil
}

// FindByID returns (nil, nil) when no record matches.
func (s *FileStore) FindByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error) {
	var rec model.FileRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, orig_name, stored_name, content_type, size_bytes, object_key, uploaded_by, uploaded_at
		FROM files WHERE id = $1
	`, id).Scan(&rec.ID, &rec.OrigName, &rec.StoredName, &rec.ContentType, &rec.SizeBytes,
		&rec.ObjectKey, &rec.UploadedBy, &rec.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find file record: %w", err)
	}
	return &rec, nil
}

// ListAll returns up to limit records, newest first.
func (s *FileStore) ListAll(ctx context.Context, limit int) ([]model.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, orig_name, stored_name, content_type, size_bytes, object_key, uploaded_by, uploaded_at
		FROM files ORDER BY uploaded_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.FileRecord
	for rows.Next() {
		var rec model.FileRecord
		if err := rows.Scan(&rec.ID, &rec.OrigName, &rec.StoredName, &rec.ContentType,
			&rec.SizeBytes, &rec.ObjectKey, &rec.UploadedBy, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file records: %w", err)
	}
	return out, nil
}
