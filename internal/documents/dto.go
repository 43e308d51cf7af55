package documents

import "time"

const filingDateLayout = "2006-01-02"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Ticker         string    `json:"ticker,omitempty"`
	DocType        string    `json:"docType,omitempty"`
	FilingDate     string    `json:"filingDate,omitempty"`
	ContentPreview string    `json:"contentPreview"`
	FileURL        string    `json:"fileUrl"`
	FileName       string    `json:"fileName"`
	SizeBytes      int64     `json:"sizeBytes"`
	Status         string    `json:"status"`
	ErrorNote      string    `json:"errorNote,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toResponse(doc Document) DocumentResponse {
	resp := DocumentResponse{
		ID:             doc.ID,
		Title:          doc.Title,
		Ticker:         doc.Ticker,
		DocType:        doc.DocType,
		ContentPreview: doc.ContentPreview,
		FileURL:        doc.FileURL,
		FileName:       doc.FileName,
		SizeBytes:      doc.SizeBytes,
		Status:         doc.Status,
		ErrorNote:      doc.ErrorNote,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if doc.FilingDate != nil {
		resp.FilingDate = doc.FilingDate.Format(filingDateLayout)
	}
	return resp
}

func toResponseList(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out
}
