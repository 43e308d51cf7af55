package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, title, ticker, doc_type, filing_date, content_preview, file_url, file_name, size_bytes, status, error_note, extracted_text_key, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    title,
    ticker,
    doc_type,
    filing_date,
    content_preview,
    file_url,
    file_name,
    size_bytes,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	status := doc.Status
	if status == "" {
		status = StatusProcessing
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		nullString(doc.Ticker),
		nullString(doc.DocType),
		nullTime(doc.FilingDate),
		doc.ContentPreview,
		doc.FileURL,
		doc.FileName,
		doc.SizeBytes,
		status,
		doc.CreatedAt,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns documents newest-first, optionally filtered by status.
func (r *PGRepo) List(ctx context.Context, status string) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
ORDER BY created_at DESC`
	args := []any{}
	if status != "" {
		query = `
SELECT ` + documentColumns + `
FROM documents
WHERE status = $1
ORDER BY created_at DESC`
		args = append(args, status)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// MarkReady finishes extraction for a still-processing document.
func (r *PGRepo) MarkReady(ctx context.Context, id, preview, extractedKey string) error {
	const query = `
UPDATE documents
SET status = $1, content_preview = $2, extracted_text_key = $3
WHERE id = $4 AND status = $5`
	_, err := r.DB.ExecContext(ctx, query, StatusReady, preview, extractedKey, id, StatusProcessing)
	return err
}

// MarkError records an extraction failure for a still-processing document.
func (r *PGRepo) MarkError(ctx context.Context, id, note string) error {
	const query = `
UPDATE documents
SET status = $1, error_note = $2
WHERE id = $3 AND status = $4`
	_, err := r.DB.ExecContext(ctx, query, StatusError, note, id, StatusProcessing)
	return err
}

// Delete removes a document; its questions go with it via the FK cascade.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var ticker sql.NullString
	var docType sql.NullString
	var filingDate sql.NullTime
	var errorNote sql.NullString
	var extractedKey sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.Title,
		&ticker,
		&docType,
		&filingDate,
		&doc.ContentPreview,
		&doc.FileURL,
		&doc.FileName,
		&doc.SizeBytes,
		&doc.Status,
		&errorNote,
		&extractedKey,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	if ticker.Valid {
		doc.Ticker = ticker.String
	}
	if docType.Valid {
		doc.DocType = docType.String
	}
	if filingDate.Valid {
		t := filingDate.Time
		doc.FilingDate = &t
	}
	if errorNote.Valid {
		doc.ErrorNote = errorNote.String
	}
	if extractedKey.Valid {
		doc.ExtractedTextKey = extractedKey.String
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ DocumentsRepo = (*PGRepo)(nil)
