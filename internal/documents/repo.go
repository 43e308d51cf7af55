package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
//
// MarkReady and MarkError only apply to rows still in processing; a document
// already in a terminal state is left untouched.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, status string) ([]Document, error)
	MarkReady(ctx context.Context, id, preview, extractedKey string) error
	MarkError(ctx context.Context, id, note string) error
	Delete(ctx context.Context, id string) error
}
