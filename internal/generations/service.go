package generations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/jobs"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/profiles"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
	"resume-tailor/resume/render"
)

// Service runs the tailoring pipeline. Generation is synchronous: the
// request blocks until the run completes or fails.
type Service struct {
	Repo     Repo
	Profiles *profiles.Service
	Resumes  *resumes.Service
	Jobs     *jobs.Service
	Store    object.ObjectStore
	LLM      llm.Client
}

// tailorOutput is the combined payload the model returns in one call.
type tailorOutput struct {
	Feedback       json.RawMessage `json:"feedback"`
	TailoredResume json.RawMessage `json:"tailoredResume"`
}

// Create validates the preconditions, records a processing row, runs the
// model and settles the row as completed or failed. A precondition failure
// leaves no row behind and costs no credit; a pipeline failure leaves a
// failed row and also costs no credit.
func (s *Service) Create(ctx context.Context, userID, resumeID, jobID string) (Generation, error) {
	if userID == "" || resumeID == "" || jobID == "" {
		return Generation{}, fmt.Errorf("%w: userID, resumeID and jobID are required", ErrInvalidInput)
	}

	profile, err := s.Profiles.GetByID(ctx, userID)
	if err != nil {
		return Generation{}, err
	}
	if profile.Credits < 1 {
		return Generation{}, ErrInsufficientCredits
	}

	resume, err := s.Resumes.Get(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return Generation{}, ErrResumeNotFound
		}
		return Generation{}, err
	}

	job, err := s.Jobs.Get(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Generation{}, ErrJobNotFound
		}
		return Generation{}, err
	}

	g := Generation{
		ID:        uuid.NewString(),
		UserID:    userID,
		ResumeID:  resume.ID,
		JobID:     job.ID,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, g); err != nil {
		return Generation{}, err
	}

	metrics.IncGenerationStarted()
	started := time.Now()

	score, feedback, structured, runErr := s.run(ctx, resume, job)
	if runErr == nil {
		// Debit before completing so a raced zero balance settles as failed.
		runErr = s.Profiles.DebitCredit(ctx, userID)
		if errors.Is(runErr, profiles.ErrInsufficientCredits) {
			runErr = ErrInsufficientCredits
		}
	}

	metrics.ObserveGenerationDurationMs(float64(time.Since(started).Milliseconds()))

	if runErr != nil {
		metrics.IncGenerationFailed()
		telemetry.Error("generation failed", map[string]any{
			"generation_id": g.ID,
			"user_id":       userID,
			"error":         runErr.Error(),
		})
		if err := s.Repo.MarkFailed(ctx, g.ID); err != nil {
			telemetry.Error("failed to mark generation failed", map[string]any{
				"generation_id": g.ID,
				"error":         err.Error(),
			})
		}
		return s.Repo.GetByID(ctx, userID, g.ID)
	}

	if err := s.Repo.MarkCompleted(ctx, g.ID, score, feedback, structured); err != nil {
		return Generation{}, err
	}

	metrics.IncGenerationCompleted()
	telemetry.Info("generation completed", map[string]any{
		"generation_id": g.ID,
		"user_id":       userID,
		"score":         score,
		"duration_ms":   time.Since(started).Milliseconds(),
	})
	return s.Repo.GetByID(ctx, userID, g.ID)
}

func (s *Service) run(ctx context.Context, resume resumes.Resume, job jobs.JobDescription) (int, json.RawMessage, json.RawMessage, error) {
	raw, err := s.LLM.TailorResume(ctx, llm.TailorInput{
		ResumeText:     resume.ExtractedText,
		JobTitle:       job.Title,
		Company:        job.Company,
		JobDescription: job.RawText,
	})
	if err != nil {
		return 0, nil, nil, fmt.Errorf("llm call: %w", err)
	}

	var out tailorOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, nil, nil, fmt.Errorf("llm output parse: %w", err)
	}
	if len(out.Feedback) == 0 || len(out.TailoredResume) == 0 {
		return 0, nil, nil, errors.New("llm output missing feedback or tailoredResume")
	}

	feedback, err := model.ParseFeedback(out.Feedback)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("feedback validation: %w", err)
	}
	if _, err := model.ParseResume(out.TailoredResume); err != nil {
		return 0, nil, nil, fmt.Errorf("tailored resume validation: %w", err)
	}

	return feedback.Score, out.Feedback, out.TailoredResume, nil
}

// Get returns a generation scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, id string) (Generation, error) {
	if userID == "" || id == "" {
		return Generation{}, fmt.Errorf("%w: user id and generation id are required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// List returns a user's generations newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Generation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes the rendered PDF blob first, then the row.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	g, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if g.PDFKey != "" {
		if err := s.Store.Delete(ctx, g.PDFKey); err != nil && !errors.Is(err, object.ErrNotFound) {
			return err
		}
	}
	return s.Repo.Delete(ctx, userID, id)
}

// PDF returns the rendered PDF bytes for a completed generation, rendering
// and caching it on first request. Later requests serve the stored copy so
// the bytes never change once a client has seen them.
func (s *Service) PDF(ctx context.Context, userID, id string) ([]byte, error) {
	g, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}

	if g.PDFKey != "" {
		data, err := s.openPDF(ctx, g.PDFKey)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, object.ErrNotFound) {
			return nil, err
		}
		// Blob went missing underneath us; fall through and re-render.
	}

	parsed, err := model.ParseResume(g.StructuredResume)
	if err != nil {
		return nil, fmt.Errorf("stored resume data invalid: %w", err)
	}
	data, err := render.RenderPDF(parsed)
	if err != nil {
		return nil, err
	}

	key := pdfKey(userID, g.ID)
	if _, err := s.Store.SaveWithKey(ctx, key, "application/pdf", bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := s.Repo.SetPDFKey(ctx, g.ID, key); err != nil {
		return nil, err
	}

	metrics.IncPDFRendered()
	telemetry.Info("generation pdf rendered", map[string]any{
		"generation_id": g.ID,
		"user_id":       userID,
		"pdf_key":       key,
	})

	// Serve the stored copy, not the freshly rendered bytes, in case a
	// concurrent request won the SetPDFKey race with different output.
	stored, err := s.Repo.GetByID(ctx, userID, g.ID)
	if err != nil {
		return nil, err
	}
	if stored.PDFKey != "" && stored.PDFKey != key {
		return s.openPDF(ctx, stored.PDFKey)
	}
	return data, nil
}

func (s *Service) openPDF(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func pdfKey(userID, generationID string) string {
	return "resumes-pdf/" + userID + "/" + generationID + ".pdf"
}
