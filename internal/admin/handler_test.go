package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/generations"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/profiles"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/server/middleware"
)

type adminFixture struct {
	router     *gin.Engine
	profiles   *profiles.Service
	adminToken string
	userToken  string
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	profileSvc := profiles.NewService(profiles.NewMemoryRepo(), 3)
	ctx := context.Background()

	admin := profiles.Profile{ID: "admin-1", Email: "admin@example.com", FullName: "Admin", Role: profiles.RoleAdmin}
	if _, err := profileSvc.Register(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	user := profiles.Profile{ID: "user-1", Email: "user@example.com", FullName: "User"}
	if _, err := profileSvc.Register(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	h := NewHandler(profileSvc, generations.NewMemoryRepo(), resumes.NewMemoryRepo(), jobs.NewMemoryRepo())

	router := gin.New()
	router.Use(middleware.Auth())
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	adminToken, err := auth.SignJWT(auth.Claims{Sub: "admin-1", Role: profiles.RoleAdmin})
	if err != nil {
		t.Fatalf("sign admin token: %v", err)
	}
	userToken, err := auth.SignJWT(auth.Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("sign user token: %v", err)
	}

	return &adminFixture{router: router, profiles: profileSvc, adminToken: adminToken, userToken: userToken}
}

func (f *adminFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestStatsRequiresAdminRole(t *testing.T) {
	f := newAdminFixture(t)

	if w := f.do(t, http.MethodGet, "/api/v1/admin/stats", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/v1/admin/stats", f.userToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("as user: status = %d, want 403", w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/v1/admin/stats", f.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("as admin: status = %d, body %s", w.Code, w.Body.String())
	}
	var stats map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["users"] != 2 {
		t.Fatalf("users = %d, want 2", stats["users"])
	}
}

func TestAdminRoleIsReadFromStoreNotToken(t *testing.T) {
	f := newAdminFixture(t)

	// A token claiming admin must not grant access if the stored role says otherwise.
	forged, err := auth.SignJWT(auth.Claims{Sub: "user-1", Role: profiles.RoleAdmin})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if w := f.do(t, http.MethodGet, "/api/v1/admin/users", forged, nil); w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestSetCredits(t *testing.T) {
	f := newAdminFixture(t)

	w := f.do(t, http.MethodPut, "/api/v1/admin/users/user-1/credits", f.adminToken, gin.H{"credits": 10})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	p, err := f.profiles.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.Credits != 10 {
		t.Fatalf("credits = %d, want 10", p.Credits)
	}

	if w := f.do(t, http.MethodPut, "/api/v1/admin/users/user-1/credits", f.adminToken, gin.H{"credits": -1}); w.Code != http.StatusBadRequest {
		t.Fatalf("negative credits: status = %d, want 400", w.Code)
	}
	if w := f.do(t, http.MethodPut, "/api/v1/admin/users/user-1/credits", f.adminToken, gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing credits: status = %d, want 400", w.Code)
	}
	if w := f.do(t, http.MethodPut, "/api/v1/admin/users/ghost/credits", f.adminToken, gin.H{"credits": 1}); w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status = %d, want 404", w.Code)
	}
}

func TestSetRoleGuardsSelfDemotion(t *testing.T) {
	f := newAdminFixture(t)

	if w := f.do(t, http.MethodPut, "/api/v1/admin/users/admin-1/role", f.adminToken, gin.H{"role": "user"}); w.Code != http.StatusBadRequest {
		t.Fatalf("self demotion: status = %d, want 400", w.Code)
	}

	w := f.do(t, http.MethodPut, "/api/v1/admin/users/user-1/role", f.adminToken, gin.H{"role": "admin"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("promote: status = %d, body %s", w.Code, w.Body.String())
	}
	p, err := f.profiles.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.Role != profiles.RoleAdmin {
		t.Fatalf("role = %q, want admin", p.Role)
	}

	if w := f.do(t, http.MethodPut, "/api/v1/admin/users/user-1/role", f.adminToken, gin.H{"role": "superuser"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: status = %d, want 400", w.Code)
	}
}

func TestDeleteUserGuardsSelfDelete(t *testing.T) {
	f := newAdminFixture(t)

	if w := f.do(t, http.MethodDelete, "/api/v1/admin/users/admin-1", f.adminToken, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("self delete: status = %d, want 400", w.Code)
	}

	if w := f.do(t, http.MethodDelete, "/api/v1/admin/users/user-1", f.adminToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", w.Code)
	}
	if _, err := f.profiles.GetByID(context.Background(), "user-1"); err == nil {
		t.Fatal("user still present after delete")
	}
	if w := f.do(t, http.MethodDelete, "/api/v1/admin/users/user-1", f.adminToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: status = %d, want 404", w.Code)
	}
}

func TestListGenerationsPagination(t *testing.T) {
	f := newAdminFixture(t)

	genRepo := generations.NewMemoryRepo()
	h := NewHandler(f.profiles, genRepo, resumes.NewMemoryRepo(), jobs.NewMemoryRepo())
	router := gin.New()
	router.Use(middleware.Auth())
	h.RegisterRoutes(router.Group("/api/v1"))
	f.router = router

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		g := generations.Generation{
			ID:       fmt.Sprintf("gen-%d", i),
			UserID:   "user-1",
			ResumeID: "resume-1",
			JobID:    "job-1",
			Status:   generations.StatusCompleted,
		}
		if err := genRepo.Create(ctx, g); err != nil {
			t.Fatalf("seed generation: %v", err)
		}
	}

	w := f.do(t, http.MethodGet, "/api/v1/admin/generations?limit=2&offset=2", f.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
}
