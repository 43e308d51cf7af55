package openai

import "fmt"

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const systemPrompt = "You are a financial document analyst. You answer questions about SEC filings " +
	"using only the provided document text. Respond with JSON only, matching this schema exactly: " +
	`{"answer": string, "citations": [{"quote": string, "location": string}]}. ` +
	"Every citation quote must be an exact span copied from the document text. " +
	"If the document does not contain the answer, say so in the answer field and return an empty citations array. " +
	"No markdown. Never omit the answer key."

// BuildPrompt creates the chat messages for a question answering request.
func BuildPrompt(question string, documentText string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(question, documentText)},
	}
}

func buildUserPrompt(question, documentText string) string {
	return fmt.Sprintf("Document Text:\n%s\n\nQuestion:\n%s", documentText, question)
}
