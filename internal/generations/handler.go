package generations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generations", h.create)
	rg.GET("/generations", h.list)
	rg.GET("/generations/:id", h.get)
	rg.DELETE("/generations/:id", h.remove)
	rg.POST("/generations/:id/pdf", h.pdf)
	rg.GET("/generations/:id/pdf", h.pdf)
}

type createRequest struct {
	ResumeID string `json:"resumeId"`
	JobID    string `json:"jobId"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}

	g, err := h.Svc.Create(c.Request.Context(), userID, req.ResumeID, req.JobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrInsufficientCredits):
			respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "no credits remaining", nil)
		case errors.Is(err, ErrResumeNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrJobNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job description not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start generation", nil)
		}
		return
	}

	status := http.StatusCreated
	if g.Status == StatusFailed {
		// The row exists but the run did not produce a result.
		status = http.StatusUnprocessableEntity
	}
	respond.JSON(c, status, toResponse(g))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations", nil)
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, g := range list {
		resp = append(resp, toResponse(g))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	g, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "generation not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generation", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(g))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "generation not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete generation", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) pdf(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	data, err := h.Svc.PDF(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "generation not found", nil)
		case errors.Is(err, ErrNotCompleted):
			respond.Error(c, http.StatusConflict, "not_completed", "generation has no result to render", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render pdf", nil)
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="tailored-resume-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func toResponse(g Generation) gin.H {
	resp := gin.H{
		"id":        g.ID,
		"resumeId":  g.ResumeID,
		"jobId":     g.JobID,
		"status":    g.Status,
		"createdAt": g.CreatedAt,
		"updatedAt": g.UpdatedAt,
	}
	if g.Score != nil {
		resp["score"] = *g.Score
	}
	if len(g.FeedbackJSON) > 0 {
		resp["feedback"] = g.FeedbackJSON
	}
	if len(g.StructuredResume) > 0 {
		resp["tailoredResume"] = g.StructuredResume
	}
	if g.PDFKey != "" {
		resp["pdfReady"] = true
	}
	return resp
}
