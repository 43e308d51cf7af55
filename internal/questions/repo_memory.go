package questions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Question
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Question),
	}
}

// Create stores a new question.
func (r *MemoryRepo) Create(ctx context.Context, q Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.Citations == nil {
		q.Citations = []Citation{}
	}
	q.UpdatedAt = q.CreatedAt
	r.data[q.ID] = q
	return nil
}

// GetByID returns a question by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.data[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

// List returns questions newest-first, optionally filtered by document.
func (r *MemoryRepo) List(ctx context.Context, documentID string) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Question, 0, len(r.data))
	for _, q := range r.data {
		if documentID != "" && q.DocumentID != documentID {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteByDocument removes all questions for a document.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, q := range r.data {
		if q.DocumentID == documentID {
			delete(r.data, id)
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
