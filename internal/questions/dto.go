package questions

import "time"

// QuestionResponse is the outward-facing representation of a question.
type QuestionResponse struct {
	ID                string     `json:"id"`
	DocumentID        string     `json:"documentId"`
	Question          string     `json:"question"`
	Answer            string     `json:"answer"`
	Citations         []Citation `json:"citations"`
	ProcessingSeconds float64    `json:"processingSeconds"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func toResponse(q Question) QuestionResponse {
	citations := q.Citations
	if citations == nil {
		citations = []Citation{}
	}
	return QuestionResponse{
		ID:                q.ID,
		DocumentID:        q.DocumentID,
		Question:          q.Question,
		Answer:            q.Answer,
		Citations:         citations,
		ProcessingSeconds: q.ProcessingSeconds,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

func toResponseList(qs []Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, toResponse(q))
	}
	return out
}
