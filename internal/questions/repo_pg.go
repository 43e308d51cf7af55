package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const questionColumns = `id, document_id, question, answer, citations, processing_seconds, created_at, updated_at`

// Create inserts a new question. Citations are stored as jsonb and are never
// written as null.
func (r *PGRepo) Create(ctx context.Context, q Question) error {
	const query = `
INSERT INTO questions (
    id,
    document_id,
    question,
    answer,
    citations,
    processing_seconds,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	citations := q.Citations
	if citations == nil {
		citations = []Citation{}
	}
	payload, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		q.ID,
		q.DocumentID,
		q.Question,
		q.Answer,
		payload,
		q.ProcessingSeconds,
		q.CreatedAt,
		q.CreatedAt,
	)
	return err
}

// GetByID fetches a question by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Question, error) {
	const query = `
SELECT ` + questionColumns + `
FROM questions
WHERE id = $1
LIMIT 1`
	q, err := scanQuestion(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	return q, nil
}

// List returns questions newest-first, optionally filtered by document.
func (r *PGRepo) List(ctx context.Context, documentID string) ([]Question, error) {
	query := `
SELECT ` + questionColumns + `
FROM questions
ORDER BY created_at DESC`
	args := []any{}
	if documentID != "" {
		query = `
SELECT ` + questionColumns + `
FROM questions
WHERE document_id = $1
ORDER BY created_at DESC`
		args = append(args, documentID)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// DeleteByDocument removes all questions for a document. The FK cascade
// covers the usual path; this exists for callers managing cleanup directly.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	const query = `DELETE FROM questions WHERE document_id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var citations []byte
	if err := row.Scan(
		&q.ID,
		&q.DocumentID,
		&q.Question,
		&q.Answer,
		&citations,
		&q.ProcessingSeconds,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return Question{}, err
	}
	q.Citations = []Citation{}
	if len(citations) > 0 {
		if err := json.Unmarshal(citations, &q.Citations); err != nil {
			return Question{}, fmt.Errorf("unmarshal citations: %w", err)
		}
		if q.Citations == nil {
			q.Citations = []Citation{}
		}
	}
	return q, nil
}

var _ Repo = (*PGRepo)(nil)
