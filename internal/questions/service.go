package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"filings-backend/internal/documents"
	"filings-backend/internal/llm"
	"filings-backend/internal/shared/storage/object"
	"filings-backend/internal/shared/telemetry"
)

// Service answers questions about ready documents and persists the result.
type Service struct {
	Repo           Repo
	Docs           documents.DocumentsRepo
	Store          object.ObjectStore
	LLM            llm.Client
	Timeout        time.Duration
	MaxPromptChars int
}

// answerPayload is the structured reply expected from the LLM.
type answerPayload struct {
	Answer    *string    `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Ask runs the full analysis flow. Nothing is persisted until a well-formed
// answer is in hand, so a failed or timed-out call leaves no row behind and
// the caller may simply resubmit.
func (s *Service) Ask(ctx context.Context, documentID, question string) (Question, error) {
	question = strings.TrimSpace(question)
	if documentID == "" {
		return Question{}, fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}
	if question == "" {
		return Question{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	// Document IDs are UUIDs; anything else can never match a row, and the
	// uuid column would reject it before the lookup ran.
	if _, err := uuid.Parse(documentID); err != nil {
		return Question{}, documents.ErrNotFound
	}

	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return Question{}, err
	}
	if doc.Status != documents.StatusReady {
		return Question{}, fmt.Errorf("%w: document status is %s", ErrDocumentNotReady, doc.Status)
	}

	text, err := s.loadExtractedText(ctx, doc)
	if err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	start := time.Now()

	llmCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	raw, err := s.LLM.Answer(llmCtx, llm.AnswerInput{
		Question:     question,
		DocumentText: boundExcerpt(text, s.maxPromptChars()),
	})
	if err != nil {
		telemetry.Error("question.llm", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return Question{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	answer, citations, err := parseAnswer(raw)
	if err != nil {
		telemetry.Error("question.parse", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return Question{}, err
	}

	q := Question{
		ID:                uuid.NewString(),
		DocumentID:        documentID,
		Question:          question,
		Answer:            answer,
		Citations:         citations,
		ProcessingSeconds: time.Since(start).Seconds(),
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// List returns questions newest-first, optionally filtered by document.
func (s *Service) List(ctx context.Context, documentID string) ([]Question, error) {
	if documentID != "" {
		if _, err := uuid.Parse(documentID); err != nil {
			return nil, fmt.Errorf("%w: documentId must be a UUID", ErrInvalidInput)
		}
	}
	return s.Repo.List(ctx, documentID)
}

func (s *Service) loadExtractedText(ctx context.Context, doc documents.Document) (string, error) {
	if doc.ExtractedTextKey == "" {
		return "", errors.New("document has no extracted text")
	}
	body, err := s.Store.Open(ctx, doc.ExtractedTextKey)
	if err != nil {
		return "", err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// parseAnswer validates the structured reply. A missing or empty answer field
// is a parse failure; absent citations become an empty list.
func parseAnswer(raw json.RawMessage) (string, []Citation, error) {
	var payload answerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if payload.Answer == nil || strings.TrimSpace(*payload.Answer) == "" {
		return "", nil, fmt.Errorf("%w: missing answer field", ErrMalformedReply)
	}
	citations := payload.Citations
	if citations == nil {
		citations = []Citation{}
	}
	return strings.TrimSpace(*payload.Answer), citations, nil
}

func boundExcerpt(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

func (s *Service) maxPromptChars() int {
	if s.MaxPromptChars > 0 {
		return s.MaxPromptChars
	}
	return 60000
}
