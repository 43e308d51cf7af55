package questions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"filings-backend/internal/bootstrap"
	"filings-backend/internal/documents"
	"filings-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "0",
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "none",
		PreviewChars:    200,
		MaxPromptChars:  60000,
	}
}

func buildApp(t *testing.T) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.Build(testConfig(t))
	require.NoError(t, err)
	return app
}

func uploadText(t *testing.T, app *bootstrap.App, name, body string) string {
	t.Helper()
	ctx := context.Background()
	key, size, _, err := app.Store.Save(ctx, name, strings.NewReader(body))
	require.NoError(t, err)
	doc, err := app.DocumentsService.CreateFromStored(ctx, documents.CreateFromStoredInput{
		Metadata:  documents.Metadata{Title: name},
		FileURL:   key,
		FileName:  name,
		SizeBytes: size,
	})
	require.NoError(t, err)
	require.Equal(t, documents.StatusReady, doc.Status)
	return doc.ID
}

func postJSON(app *bootstrap.App, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestAskEndpointReturnsPersistedQuestion(t *testing.T) {
	app := buildApp(t)
	docID := uploadText(t, app, "10k.txt", "Net income was $12 million.")
	app.QuestionsService.LLM = &stubLLM{
		reply: json.RawMessage(`{"answer":"Net income was $12 million.","citations":[{"quote":"Net income was $12 million","location":"item 8"}]}`),
	}

	w := postJSON(app, "/api/questions", map[string]string{
		"documentId": docID,
		"question":   "What was net income?",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var got struct {
		ID        string `json:"id"`
		Answer    string `json:"answer"`
		Citations []struct {
			Quote    string `json:"quote"`
			Location string `json:"location"`
		} `json:"citations"`
		ProcessingSeconds float64 `json:"processingSeconds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, "Net income was $12 million.", got.Answer)
	require.Len(t, got.Citations, 1)
	require.Equal(t, "item 8", got.Citations[0].Location)
}

func TestAnalyzeEndpointIsAnAlias(t *testing.T) {
	app := buildApp(t)
	docID := uploadText(t, app, "10k.txt", "Revenue grew 8%.")
	app.QuestionsService.LLM = &stubLLM{
		reply: json.RawMessage(`{"answer":"Revenue grew 8%.","citations":[]}`),
	}

	w := postJSON(app, "/api/analyze", map[string]string{
		"documentId": docID,
		"question":   "How did revenue change?",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAskEndpointValidation(t *testing.T) {
	app := buildApp(t)
	docID := uploadText(t, app, "10k.txt", "text")
	app.QuestionsService.LLM = &stubLLM{reply: json.RawMessage(`{"answer":"ok"}`)}

	cases := []struct {
		name     string
		payload  map[string]string
		wantCode int
		wantErr  string
	}{
		{"missing document", map[string]string{"question": "What?"}, http.StatusBadRequest, "validation_error"},
		{"missing question", map[string]string{"documentId": docID}, http.StatusBadRequest, "validation_error"},
		{"malformed document id", map[string]string{"documentId": "ghost", "question": "What?"}, http.StatusNotFound, "not_found"},
		{"unknown document", map[string]string{"documentId": "7f0c8a1e-43af-4ac2-9af0-93a2a1a0a001", "question": "What?"}, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(app, "/api/questions", tc.payload)
			require.Equal(t, tc.wantCode, w.Code)
			require.Contains(t, w.Body.String(), tc.wantErr)
		})
	}
}

func TestAskEndpointUpstreamFailure(t *testing.T) {
	app := buildApp(t)
	docID := uploadText(t, app, "10k.txt", "text")
	app.QuestionsService.LLM = &stubLLM{err: context.DeadlineExceeded}

	w := postJSON(app, "/api/questions", map[string]string{
		"documentId": docID,
		"question":   "What was revenue?",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "upstream_error")

	list := httptest.NewRecorder()
	app.Router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
	require.Equal(t, http.StatusOK, list.Code)
	require.Equal(t, "[]", strings.TrimSpace(list.Body.String()))
}

func TestAskEndpointMalformedReply(t *testing.T) {
	app := buildApp(t)
	docID := uploadText(t, app, "10k.txt", "text")
	app.QuestionsService.LLM = &stubLLM{reply: json.RawMessage(`{"citations":[]}`)}

	w := postJSON(app, "/api/questions", map[string]string{
		"documentId": docID,
		"question":   "What was revenue?",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "parse_error")
}

func TestListEndpointFiltersByDocument(t *testing.T) {
	app := buildApp(t)
	firstID := uploadText(t, app, "first.txt", "alpha")
	secondID := uploadText(t, app, "second.txt", "beta")
	app.QuestionsService.LLM = &stubLLM{reply: json.RawMessage(`{"answer":"ok","citations":[]}`)}

	require.Equal(t, http.StatusCreated, postJSON(app, "/api/questions", map[string]string{"documentId": firstID, "question": "one?"}).Code)
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, http.StatusCreated, postJSON(app, "/api/questions", map[string]string{"documentId": secondID, "question": "two?"}).Code)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions?documentId="+firstID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rows []struct {
		DocumentID string `json:"documentId"`
		Question   string `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "one?", rows[0].Question)
}

func TestListEndpointRejectsMalformedDocumentFilter(t *testing.T) {
	app := buildApp(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions?documentId=not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "validation_error")
}
