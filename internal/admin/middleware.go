package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/profiles"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// RequireAdmin gates a route group on the admin role. The role is re-read
// from the profiles store rather than trusted from the token, so a demoted
// admin loses access as soon as the row changes.
func RequireAdmin(profileSvc *profiles.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		profile, err := profileSvc.GetByID(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		if profile.Role != profiles.RoleAdmin {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		c.Next()
	}
}
