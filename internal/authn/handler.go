package authn

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"resume-tailor/internal/profiles"
	sharedauth "resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/shared/telemetry"
)

const minPasswordLen = 8

// Handler serves password signup/login and the current-profile endpoint.
type Handler struct {
	Profiles *profiles.Service
	Google   *GoogleService
}

func NewHandler(profileSvc *profiles.Service, google *GoogleService) *Handler {
	return &Handler{Profiles: profileSvc, Google: google}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
	rg.GET("/me", h.me)
	if h.Google != nil {
		h.Google.RegisterRoutes(rg)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_failed", "a valid email is required", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.Error(c, http.StatusBadRequest, "validation_failed", "password must be at least 8 characters", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to hash password", nil)
		return
	}

	profile := profiles.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         profiles.RoleUser,
		PasswordHash: string(hash),
	}
	profile, err = h.Profiles.Register(c.Request.Context(), profile)
	if err != nil {
		if err == profiles.ErrEmailTaken {
			respond.Error(c, http.StatusConflict, "email_taken", "email already registered", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create account", nil)
		return
	}

	token, err := issueToken(profile)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	telemetry.Info("account created", map[string]any{"user_id": profile.ID})
	respond.JSON(c, http.StatusCreated, gin.H{"token": token, "user": publicProfile(profile)})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := h.Profiles.GetByEmail(c.Request.Context(), email)
	if err != nil {
		// Same response for unknown email and bad password.
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		return
	}
	if profile.PasswordHash == "" {
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		return
	}

	token, err := issueToken(profile)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"token": token, "user": publicProfile(profile)})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	profile, err := h.Profiles.GetByID(c.Request.Context(), userID)
	if err != nil {
		if err == profiles.ErrNotFound {
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, publicProfile(profile))
}

func issueToken(p profiles.Profile) (string, error) {
	return sharedauth.SignJWT(sharedauth.Claims{
		Sub:   p.ID,
		Email: p.Email,
		Name:  p.FullName,
		Role:  p.Role,
	})
}

func publicProfile(p profiles.Profile) gin.H {
	return gin.H{
		"id":        p.ID,
		"email":     p.Email,
		"fullName":  p.FullName,
		"avatarUrl": p.AvatarURL,
		"role":      p.Role,
		"credits":   p.Credits,
	}
}
