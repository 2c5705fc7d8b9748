package generations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"resume-tailor/internal/jobs"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/profiles"
	"resume-tailor/internal/resumes"
	localstore "resume-tailor/internal/shared/storage/object/local"
)

const validOutput = `{
  "feedback": {
    "score": 78,
    "strengths": ["solid backend experience"],
    "weaknesses": ["no kubernetes exposure"],
    "suggestions": ["mention container orchestration"],
    "atsKeywords": ["Go", "PostgreSQL"]
  },
  "tailoredResume": {
    "personal": {"name": "Ada Lovelace", "email": "ada@example.com"},
    "summary": "Backend engineer focused on data-heavy services.",
    "experience": [
      {"company": "Analytical Engines", "position": "Engineer", "startDate": "2021-03", "bullets": ["Built the thing"]}
    ],
    "education": [
      {"institution": "University of London", "degree": "BSc"}
    ],
    "skills": {"technical": ["Go"], "soft": ["communication"]}
  }
}`

type fakeLLM struct {
	output string
	err    error
	calls  int
}

func (f *fakeLLM) TailorResume(ctx context.Context, input llm.TailorInput) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.output), nil
}

type fixture struct {
	svc      *Service
	profiles *profiles.Service
	userID   string
	resumeID string
	jobID    string
}

func newFixture(t *testing.T, client llm.Client, credits int) fixture {
	t.Helper()
	ctx := context.Background()

	profileRepo := profiles.NewMemoryRepo()
	profileSvc := profiles.NewService(profileRepo, credits)
	resumeRepo := resumes.NewMemoryRepo()
	jobRepo := jobs.NewMemoryRepo()
	store := localstore.New(t.TempDir())

	userID := "user-1"
	if _, err := profileSvc.Register(ctx, profiles.Profile{ID: userID, Email: "ada@example.com"}); err != nil {
		t.Fatalf("register profile: %v", err)
	}

	resumeID := "resume-1"
	if err := resumeRepo.Create(ctx, resumes.Resume{
		ID:            resumeID,
		UserID:        userID,
		FileName:      "resume.pdf",
		StorageKey:    "key-1",
		ExtractedText: "Ada Lovelace, engineer",
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create resume: %v", err)
	}

	jobID := "job-1"
	if err := jobRepo.Create(ctx, jobs.JobDescription{
		ID:        jobID,
		UserID:    userID,
		Title:     "Backend Engineer",
		Company:   "Initech",
		RawText:   "We need a backend engineer comfortable with Go and PostgreSQL at scale.",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	svc := &Service{
		Repo:     NewMemoryRepo(),
		Profiles: profileSvc,
		Resumes:  resumes.NewService(store, resumeRepo),
		Jobs:     jobs.NewService(jobRepo),
		Store:    store,
		LLM:      client,
	}
	return fixture{svc: svc, profiles: profileSvc, userID: userID, resumeID: resumeID, jobID: jobID}
}

func TestCreateCompletesAndDebitsOneCredit(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", g.Status)
	}
	if g.Score == nil || *g.Score != 78 {
		t.Fatalf("score = %v, want 78", g.Score)
	}
	if len(g.FeedbackJSON) == 0 || len(g.StructuredResume) == 0 {
		t.Fatal("completed generation must carry feedback and structured resume")
	}

	profile, err := fx.profiles.GetByID(ctx, fx.userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if profile.Credits != 0 {
		t.Fatalf("credits = %d, want 0", profile.Credits)
	}
}

func TestCreateWithoutCreditsLeavesNoRow(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 0)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}

	list, err := fx.svc.List(ctx, fx.userID, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no rows after precondition failure, got %d", len(list))
	}
}

func TestCreateUnknownResumeLeavesNoRow(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.userID, "missing", fx.jobID)
	if !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("err = %v, want ErrResumeNotFound", err)
	}

	list, _ := fx.svc.List(ctx, fx.userID, 10, 0)
	if len(list) != 0 {
		t.Fatalf("expected no rows, got %d", len(list))
	}

	profile, _ := fx.profiles.GetByID(ctx, fx.userID)
	if profile.Credits != 1 {
		t.Fatalf("credits = %d, want 1 (precondition failures never debit)", profile.Credits)
	}
}

func TestCreateUnknownJobLeavesNoRow(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)

	_, err := fx.svc.Create(context.Background(), fx.userID, fx.resumeID, "missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("err = %v, want ErrJobNotFound", err)
	}
}

func TestCreateLLMErrorMarksFailedWithoutDebit(t *testing.T) {
	fx := newFixture(t, &fakeLLM{err: errors.New("upstream timeout")}, 2)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", g.Status)
	}
	if g.Score != nil || len(g.FeedbackJSON) != 0 || len(g.StructuredResume) != 0 {
		t.Fatal("failed generation must carry no payloads")
	}

	profile, _ := fx.profiles.GetByID(ctx, fx.userID)
	if profile.Credits != 2 {
		t.Fatalf("credits = %d, want 2 (failed runs are free)", profile.Credits)
	}
}

func TestCreateInvalidSchemaMarksFailed(t *testing.T) {
	bad := `{"feedback": {"score": 150, "strengths": [], "weaknesses": [], "suggestions": [], "atsKeywords": []}, "tailoredResume": {"personal": {"name": "x", "email": "y"}, "summary": "", "experience": [], "education": [], "skills": {"technical": [], "soft": []}}}`
	fx := newFixture(t, &fakeLLM{output: bad}, 1)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Status != StatusFailed {
		t.Fatalf("status = %q, want failed for out-of-range score", g.Status)
	}

	profile, _ := fx.profiles.GetByID(ctx, fx.userID)
	if profile.Credits != 1 {
		t.Fatalf("credits = %d, want 1", profile.Credits)
	}
}

func TestPDFIsRenderedOnceAndStable(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := fx.svc.PDF(ctx, fx.userID, g.ID)
	if err != nil {
		t.Fatalf("PDF (first): %v", err)
	}
	if !bytes.HasPrefix(first, []byte("%PDF-")) {
		t.Fatal("expected a PDF payload")
	}

	second, err := fx.svc.PDF(ctx, fx.userID, g.ID)
	if err != nil {
		t.Fatalf("PDF (second): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("repeated downloads must return identical bytes")
	}

	stored, err := fx.svc.Get(ctx, fx.userID, g.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := "resumes-pdf/" + fx.userID + "/" + g.ID + ".pdf"
	if stored.PDFKey != want {
		t.Fatalf("pdf key = %q, want %q", stored.PDFKey, want)
	}
}

func TestPDFRejectsUnfinishedGeneration(t *testing.T) {
	fx := newFixture(t, &fakeLLM{err: errors.New("boom")}, 1)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = fx.svc.PDF(ctx, fx.userID, g.ID)
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("err = %v, want ErrNotCompleted", err)
	}
}

func TestPDFIsScopedToOwner(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = fx.svc.PDF(ctx, "someone-else", g.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for another user", err)
	}
}

func TestDeleteRemovesRenderedPDF(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)
	ctx := context.Background()

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fx.svc.PDF(ctx, fx.userID, g.ID); err != nil {
		t.Fatalf("PDF: %v", err)
	}

	if err := fx.svc.Delete(ctx, fx.userID, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := fx.svc.Get(ctx, fx.userID, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}

	key := "resumes-pdf/" + fx.userID + "/" + g.ID + ".pdf"
	if _, err := fx.svc.Store.Open(ctx, key); err == nil {
		t.Fatal("expected pdf blob to be gone after delete")
	}
}

func TestCreateRacedDebitSettlesFailed(t *testing.T) {
	fx := newFixture(t, &fakeLLM{output: validOutput}, 1)
	ctx := context.Background()

	// Drain the balance between the precondition check and the debit by
	// swapping in an LLM that spends the credit mid-run.
	drainer := &drainingLLM{inner: &fakeLLM{output: validOutput}, profiles: fx.profiles, userID: fx.userID}
	fx.svc.LLM = drainer

	g, err := fx.svc.Create(ctx, fx.userID, fx.resumeID, fx.jobID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Status != StatusFailed {
		t.Fatalf("status = %q, want failed when the debit loses the race", g.Status)
	}
}

type drainingLLM struct {
	inner    llm.Client
	profiles *profiles.Service
	userID   string
}

func (d *drainingLLM) TailorResume(ctx context.Context, input llm.TailorInput) (json.RawMessage, error) {
	if err := d.profiles.DebitCredit(ctx, d.userID); err != nil {
		return nil, err
	}
	return d.inner.TailorResume(ctx, input)
}
