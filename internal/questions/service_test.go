package questions_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"filings-backend/internal/documents"
	"filings-backend/internal/llm"
	"filings-backend/internal/questions"
	localstore "filings-backend/internal/shared/storage/object/local"
	"filings-backend/internal/shared/storage/object"
)

type stubLLM struct {
	reply json.RawMessage
	err   error
	calls int
}

func (s *stubLLM) Answer(ctx context.Context, input llm.AnswerInput) (json.RawMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

type fixture struct {
	svc   *questions.Service
	docs  *documents.MemoryRepo
	store object.ObjectStore
	llm   *stubLLM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := documents.NewMemoryRepo()
	store := localstore.New(t.TempDir())
	stub := &stubLLM{}
	svc := &questions.Service{
		Repo:           questions.NewMemoryRepo(),
		Docs:           docs,
		Store:          store,
		LLM:            stub,
		Timeout:        5 * time.Second,
		MaxPromptChars: 60000,
	}
	return &fixture{svc: svc, docs: docs, store: store, llm: stub}
}

func (f *fixture) addReadyDocument(t *testing.T, text string) string {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()
	key := "filings/" + id + ".txt.extracted.txt"
	_, err := f.store.SaveWithKey(ctx, key, "text/plain", strings.NewReader(text))
	require.NoError(t, err)
	require.NoError(t, f.docs.Create(ctx, documents.Document{
		ID:        id,
		Title:     id,
		FileURL:   "filings/" + id + ".txt",
		FileName:  id + ".txt",
		Status:    documents.StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, f.docs.MarkReady(ctx, id, text, key))
	return id
}

func TestAskPersistsAnswerWithCitations(t *testing.T) {
	f := newFixture(t)
	docID := f.addReadyDocument(t, "Total revenue was $4.2 billion in fiscal 2023.")
	f.llm.reply = json.RawMessage(`{"answer":"Total revenue was $4.2 billion.","citations":[{"quote":"Total revenue was $4.2 billion","location":"page 1"}]}`)

	q, err := f.svc.Ask(context.Background(), docID, "What was total revenue?")
	require.NoError(t, err)
	require.Equal(t, "Total revenue was $4.2 billion.", q.Answer)
	require.Len(t, q.Citations, 1)
	require.Equal(t, "page 1", q.Citations[0].Location)
	require.GreaterOrEqual(t, q.ProcessingSeconds, 0.0)

	persisted, err := f.svc.Repo.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, q.Answer, persisted.Answer)
}

func TestAskAbsentCitationsBecomeEmptyList(t *testing.T) {
	f := newFixture(t)
	docID := f.addReadyDocument(t, "Short filing.")
	f.llm.reply = json.RawMessage(`{"answer":"The filing does not say."}`)

	q, err := f.svc.Ask(context.Background(), docID, "What was net income?")
	require.NoError(t, err)
	require.NotNil(t, q.Citations)
	require.Empty(t, q.Citations)
}

func TestAskRejectsDocumentNotReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := uuid.NewString()
	require.NoError(t, f.docs.Create(ctx, documents.Document{
		ID:        docID,
		Status:    documents.StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}))

	_, err := f.svc.Ask(ctx, docID, "Anything?")
	require.ErrorIs(t, err, questions.ErrDocumentNotReady)
	require.Zero(t, f.llm.calls, "LLM must not be called for a non-ready document")
	requireNoRows(t, f.svc)
}

func TestAskRejectsMissingDocument(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{uuid.NewString(), "ghost"} {
		_, err := f.svc.Ask(context.Background(), id, "Anything?")
		require.ErrorIs(t, err, documents.ErrNotFound, "id %s", id)
	}
	require.Zero(t, f.llm.calls)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	f := newFixture(t)
	docID := f.addReadyDocument(t, "text")

	_, err := f.svc.Ask(context.Background(), docID, "   ")
	require.ErrorIs(t, err, questions.ErrInvalidInput)
	require.Zero(t, f.llm.calls)
}

func TestAskUpstreamFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	docID := f.addReadyDocument(t, "text")
	f.llm.err = errors.New("connection reset")

	_, err := f.svc.Ask(context.Background(), docID, "What was revenue?")
	require.ErrorIs(t, err, questions.ErrUpstream)
	requireNoRows(t, f.svc)
}

func TestAskTimeoutPersistsNothing(t *testing.T) {
	f := newFixture(t)
	docID := f.addReadyDocument(t, "text")
	f.llm.err = context.DeadlineExceeded

	_, err := f.svc.Ask(context.Background(), docID, "What was revenue?")
	require.ErrorIs(t, err, questions.ErrUpstream)
	requireNoRows(t, f.svc)
}

func TestAskMalformedReplyPersistsNothing(t *testing.T) {
	f := newFixture(t)
	docID := f.addReadyDocument(t, "text")

	for _, reply := range []string{
		`{"citations":[]}`,
		`{"answer":""}`,
		`{"answer":"   "}`,
		`[1,2,3]`,
	} {
		f.llm.reply = json.RawMessage(reply)
		_, err := f.svc.Ask(context.Background(), docID, "What was revenue?")
		require.ErrorIs(t, err, questions.ErrMalformedReply, "reply %s", reply)
	}
	requireNoRows(t, f.svc)
}

func TestAskBoundsPromptExcerpt(t *testing.T) {
	f := newFixture(t)
	f.svc.MaxPromptChars = 100
	docID := f.addReadyDocument(t, strings.Repeat("z", 5000))

	var seen string
	f.svc.LLM = llmFunc(func(ctx context.Context, input llm.AnswerInput) (json.RawMessage, error) {
		seen = input.DocumentText
		return json.RawMessage(`{"answer":"ok","citations":[]}`), nil
	})

	_, err := f.svc.Ask(context.Background(), docID, "What?")
	require.NoError(t, err)
	require.Len(t, seen, 100)
}

func TestListFiltersByDocument(t *testing.T) {
	f := newFixture(t)
	firstID := f.addReadyDocument(t, "alpha")
	secondID := f.addReadyDocument(t, "beta")
	f.llm.reply = json.RawMessage(`{"answer":"yes","citations":[]}`)

	_, err := f.svc.Ask(context.Background(), firstID, "first?")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = f.svc.Ask(context.Background(), secondID, "second?")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = f.svc.Ask(context.Background(), firstID, "third?")
	require.NoError(t, err)

	all, err := f.svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "third?", all[0].Question, "newest first")

	forFirst, err := f.svc.List(context.Background(), firstID)
	require.NoError(t, err)
	require.Len(t, forFirst, 2)
}

func TestListRejectsMalformedDocumentFilter(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, questions.ErrInvalidInput)
}

type llmFunc func(ctx context.Context, input llm.AnswerInput) (json.RawMessage, error)

func (f llmFunc) Answer(ctx context.Context, input llm.AnswerInput) (json.RawMessage, error) {
	return f(ctx, input)
}

func requireNoRows(t *testing.T, svc *questions.Service) {
	t.Helper()
	rows, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, rows)
}
