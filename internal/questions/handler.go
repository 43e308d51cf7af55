package questions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/documents"
	"filings-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the questions service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches question routes to the router group. /analyze is an
// alternate entry point to the same ask operation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/questions", h.list)
	rg.POST("/questions", h.ask)
	rg.POST("/analyze", h.ask)
}

type askRequest struct {
	DocumentID string `json:"documentId"`
	Question   string `json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	c.Set("documentId", req.DocumentID)

	q, err := h.Svc.Ask(c.Request.Context(), req.DocumentID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDocumentNotReady):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found", nil)
		case errors.Is(err, ErrMalformedReply):
			respond.Error(c, http.StatusBadGateway, respond.CodeParse, "analysis reply did not match the expected shape", nil)
		case errors.Is(err, ErrUpstream):
			respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "analysis failed; please retry", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to answer question", nil)
		}
		return
	}

	c.Set("questionId", q.ID)
	respond.JSON(c, http.StatusCreated, toResponse(q))
}

func (h *Handler) list(c *gin.Context) {
	documentID := strings.TrimSpace(c.Query("documentId"))

	qs, err := h.Svc.List(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list questions", nil)
		}
		return
	}

	respond.OK(c, toResponseList(qs))
}
