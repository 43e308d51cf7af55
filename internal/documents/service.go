package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"filings-backend/internal/extract"
	"filings-backend/internal/shared/storage/object"
	"filings-backend/internal/shared/telemetry"
)

// QuestionsPurger removes a document's questions. Postgres handles this with
// the FK cascade; the in-memory repos need it done explicitly.
type QuestionsPurger interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Store        object.ObjectStore
	Repo         DocumentsRepo
	Questions    QuestionsPurger
	PreviewChars int
}

// Metadata is the optional filing metadata supplied alongside an upload.
type Metadata struct {
	Title      string
	Ticker     string
	DocType    string
	FilingDate *time.Time
}

// CreateFromStoredInput describes a file already present in the object store.
type CreateFromStoredInput struct {
	Metadata
	FileURL   string
	FileName  string
	SizeBytes int64
}

// Upload stores the file, records a processing document, and runs extraction.
// The returned document is always in a terminal state (ready or error).
func (s *Service) Upload(ctx context.Context, fileName string, declaredMime string, meta Metadata, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	// Rejected before any bytes hit storage.
	if !extract.Supported(declaredMime, fileName) {
		return Document{}, fmt.Errorf("%w: only PDF and plain text filings are accepted", ErrUnsupportedType)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, fileName, r)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = fileName
	}

	doc := Document{
		ID:         uuid.NewString(),
		Title:      title,
		Ticker:     meta.Ticker,
		DocType:    meta.DocType,
		FilingDate: meta.FilingDate,
		FileURL:    storageKey,
		FileName:   fileName,
		SizeBytes:  size,
		Status:     StatusProcessing,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return s.finishExtraction(ctx, doc, mimeType)
}

// CreateFromStored records a document whose file was placed in the object
// store out of band, then runs extraction so the row reaches a terminal state.
func (s *Service) CreateFromStored(ctx context.Context, in CreateFromStoredInput) (Document, error) {
	if in.FileURL == "" {
		return Document{}, fmt.Errorf("%w: fileUrl is required", ErrInvalidInput)
	}
	if in.FileName == "" {
		return Document{}, fmt.Errorf("%w: fileName is required", ErrInvalidInput)
	}
	if in.SizeBytes <= 0 {
		return Document{}, fmt.Errorf("%w: sizeBytes must be positive", ErrInvalidInput)
	}
	if !extract.Supported("", in.FileName) {
		return Document{}, fmt.Errorf("%w: only PDF and plain text filings are accepted", ErrUnsupportedType)
	}

	title := in.Title
	if title == "" {
		title = in.FileName
	}

	doc := Document{
		ID:         uuid.NewString(),
		Title:      title,
		Ticker:     in.Ticker,
		DocType:    in.DocType,
		FilingDate: in.FilingDate,
		FileURL:    in.FileURL,
		FileName:   in.FileName,
		SizeBytes:  in.SizeBytes,
		Status:     StatusProcessing,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return s.finishExtraction(ctx, doc, "")
}

// Get returns a single document.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	// Document IDs are UUIDs; anything else can never match a row, and the
	// uuid column would reject it before the lookup ran.
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns documents newest-first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]Document, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.List(ctx, status)
}

// Delete removes the document row and its stored objects. Questions cascade
// with the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if s.Questions != nil {
		if err := s.Questions.DeleteByDocument(ctx, id); err != nil {
			return err
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	// Stored objects are cleaned up best-effort; the row is already gone.
	if err := s.Store.Delete(ctx, doc.FileURL); err != nil {
		telemetry.Error("document.delete_object", map[string]any{"document_id": id, "error": err.Error()})
	}
	if doc.ExtractedTextKey != "" {
		if err := s.Store.Delete(ctx, doc.ExtractedTextKey); err != nil {
			telemetry.Error("document.delete_object", map[string]any{"document_id": id, "error": err.Error()})
		}
	}
	return nil
}

// finishExtraction moves doc from processing to ready or error and returns the
// final row. Extraction failures are recorded on the row, not returned as an
// error; the document reached a definite state either way.
func (s *Service) finishExtraction(ctx context.Context, doc Document, mimeType string) (Document, error) {
	text, extractedKey, err := extract.ExtractText(ctx, s.Store, doc.FileURL, mimeType, doc.FileName)
	if err != nil {
		telemetry.Error("document.extract", map[string]any{
			"document_id": doc.ID,
			"file_name":   doc.FileName,
			"error":       err.Error(),
		})
		if markErr := s.Repo.MarkError(ctx, doc.ID, err.Error()); markErr != nil {
			return Document{}, markErr
		}
		return s.Repo.GetByID(ctx, doc.ID)
	}

	preview := extract.Preview(text, s.previewChars())
	if err := s.Repo.MarkReady(ctx, doc.ID, preview, extractedKey); err != nil {
		return Document{}, err
	}
	return s.Repo.GetByID(ctx, doc.ID)
}

func (s *Service) previewChars() int {
	if s.PreviewChars > 0 {
		return s.PreviewChars
	}
	return 200
}
