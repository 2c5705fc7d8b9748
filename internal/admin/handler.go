package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/generations"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/profiles"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/shared/telemetry"
)

// Handler serves the admin screens: platform stats, user management and a
// cross-user view of generations.
type Handler struct {
	Profiles    *profiles.Service
	Generations generations.Repo
	Resumes     resumes.Repo
	Jobs        jobs.Repo
}

func NewHandler(profileSvc *profiles.Service, genRepo generations.Repo, resumeRepo resumes.Repo, jobRepo jobs.Repo) *Handler {
	return &Handler{
		Profiles:    profileSvc,
		Generations: genRepo,
		Resumes:     resumeRepo,
		Jobs:        jobRepo,
	}
}

// RegisterRoutes attaches admin routes behind the RequireAdmin gate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/admin", RequireAdmin(h.Profiles))
	grp.GET("/stats", h.stats)
	grp.GET("/users", h.listUsers)
	grp.PUT("/users/:id/credits", h.setCredits)
	grp.PUT("/users/:id/role", h.setRole)
	grp.DELETE("/users/:id", h.deleteUser)
	grp.GET("/generations", h.listGenerations)
}

func (h *Handler) stats(c *gin.Context) {
	ctx := c.Request.Context()

	userCount, err := h.Profiles.Count(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	resumeCount, err := h.Resumes.Count(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	jobCount, err := h.Jobs.Count(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	genCount, err := h.Generations.Count(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	completed, err := h.Generations.CountByStatus(ctx, generations.StatusCompleted)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	failed, err := h.Generations.CountByStatus(ctx, generations.StatusFailed)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"users":                userCount,
		"resumes":              resumeCount,
		"jobDescriptions":      jobCount,
		"generations":          genCount,
		"generationsCompleted": completed,
		"generationsFailed":    failed,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	limit, offset := pagination(c, 50, 200)

	list, err := h.Profiles.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list users", nil)
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

type creditsRequest struct {
	Credits *int `json:"credits"`
}

func (h *Handler) setCredits(c *gin.Context) {
	var req creditsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Credits == nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "credits is required", nil)
		return
	}
	if *req.Credits < 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "credits must be non-negative", nil)
		return
	}

	id := c.Param("id")
	if err := h.Profiles.SetCredits(c.Request.Context(), id, *req.Credits); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update credits", nil)
		return
	}

	telemetry.Info("admin updated credits", map[string]any{
		"admin_id":  middleware.UserIDFromContext(c),
		"target_id": id,
		"credits":   *req.Credits,
	})
	c.Status(http.StatusNoContent)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "role is required", nil)
		return
	}

	id := c.Param("id")
	if id == middleware.UserIDFromContext(c) && req.Role != profiles.RoleAdmin {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cannot remove your own admin role", nil)
		return
	}

	if err := h.Profiles.SetRole(c.Request.Context(), id, req.Role); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	telemetry.Info("admin updated role", map[string]any{
		"admin_id":  middleware.UserIDFromContext(c),
		"target_id": id,
		"role":      req.Role,
	})
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == middleware.UserIDFromContext(c) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cannot delete your own account", nil)
		return
	}

	if err := h.Profiles.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete user", nil)
		return
	}

	telemetry.Info("admin deleted user", map[string]any{
		"admin_id":  middleware.UserIDFromContext(c),
		"target_id": id,
	})
	c.Status(http.StatusNoContent)
}

func (h *Handler) listGenerations(c *gin.Context) {
	limit, offset := pagination(c, 50, 200)

	list, err := h.Generations.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations", nil)
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, g := range list {
		item := gin.H{
			"id":        g.ID,
			"userId":    g.UserID,
			"resumeId":  g.ResumeID,
			"jobId":     g.JobID,
			"status":    g.Status,
			"createdAt": g.CreatedAt,
			"updatedAt": g.UpdatedAt,
		}
		if g.Score != nil {
			item["score"] = *g.Score
		}
		resp = append(resp, item)
	}
	respond.JSON(c, http.StatusOK, resp)
}

func pagination(c *gin.Context, def, max int) (int, int) {
	limit := def
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > max {
		limit = def
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
