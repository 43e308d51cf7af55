package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for document question answering.
type Client interface {
	Answer(ctx context.Context, input AnswerInput) (json.RawMessage, error)
}

// AnswerInput captures the inputs needed to answer a question.
type AnswerInput struct {
	Question     string
	DocumentText string
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient is a stub used when no provider is configured.
type PlaceholderClient struct{}

// Answer returns ErrNotConfigured.
func (PlaceholderClient) Answer(ctx context.Context, input AnswerInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
