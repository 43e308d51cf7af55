package documents

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/documents", h.create)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation,
				fmt.Sprintf("file exceeds the upload limit of %d bytes", h.MaxUploadBytes), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}

	meta, err := metadataFromForm(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	declaredMime := fileHeader.Header.Get("Content-Type")
	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, declaredMime, meta, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "failed to store document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	c.Set("statusTransition", StatusProcessing+"->"+doc.Status)
	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

type createRequest struct {
	Title      string `json:"title"`
	Ticker     string `json:"ticker"`
	DocType    string `json:"docType"`
	FilingDate string `json:"filingDate"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
	SizeBytes  int64  `json:"sizeBytes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	filingDate, err := parseFilingDate(req.FilingDate)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		return
	}

	in := CreateFromStoredInput{
		Metadata: Metadata{
			Title:      strings.TrimSpace(req.Title),
			Ticker:     strings.TrimSpace(req.Ticker),
			DocType:    strings.TrimSpace(req.DocType),
			FilingDate: filingDate,
		},
		FileURL:   strings.TrimSpace(req.FileURL),
		FileName:  strings.TrimSpace(req.FileName),
		SizeBytes: req.SizeBytes,
	}

	doc, err := h.Svc.CreateFromStored(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to create document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	c.Set("statusTransition", StatusProcessing+"->"+doc.Status)
	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))

	docs, err := h.Svc.List(c.Request.Context(), status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list documents", nil)
		}
		return
	}

	respond.OK(c, toResponseList(docs))
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch document", nil)
		}
		return
	}

	respond.OK(c, toResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to delete document", nil)
		}
		return
	}

	c.Set("documentId", id)
	c.Status(http.StatusNoContent)
}

func metadataFromForm(c *gin.Context) (Metadata, error) {
	filingDate, err := parseFilingDate(c.PostForm("filingDate"))
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Title:      strings.TrimSpace(c.PostForm("title")),
		Ticker:     strings.TrimSpace(c.PostForm("ticker")),
		DocType:    strings.TrimSpace(c.PostForm("docType")),
		FilingDate: filingDate,
	}, nil
}

func parseFilingDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(filingDateLayout, raw)
	if err != nil {
		return nil, errors.New("filingDate must be formatted YYYY-MM-DD")
	}
	return &t, nil
}
