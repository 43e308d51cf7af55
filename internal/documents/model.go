package documents

import "time"

// Document statuses. A document starts at processing and moves to exactly one
// of ready or error; neither terminal state ever reverts.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// Document represents an uploaded SEC filing plus its extraction state.
type Document struct {
	ID               string
	Title            string
	Ticker           string
	DocType          string
	FilingDate       *time.Time
	ContentPreview   string
	FileURL          string
	FileName         string
	SizeBytes        int64
	Status           string
	ErrorNote        string
	ExtractedTextKey string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidStatus reports whether s is a known document status.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusReady, StatusError:
		return true
	default:
		return false
	}
}
