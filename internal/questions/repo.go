package questions

import "context"

// Repo defines persistence operations for questions.
type Repo interface {
	Create(ctx context.Context, q Question) error
	GetByID(ctx context.Context, id string) (Question, error)
	List(ctx context.Context, documentID string) ([]Question, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
