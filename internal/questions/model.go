package questions

import "time"

// Citation is a structured reference into a document's extracted text that
// supports part of an answer.
type Citation struct {
	Quote    string `json:"quote"`
	Location string `json:"location,omitempty"`
}

// Question is a user query against one document plus its persisted answer.
// A row exists only after a well-formed answer was obtained; Citations is
// always a list, never nil.
type Question struct {
	ID                string
	DocumentID        string
	Question          string
	Answer            string
	Citations         []Citation
	ProcessingSeconds float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
