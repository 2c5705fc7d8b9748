package generations

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateInsertsProcessingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	g := Generation{
		ID:        "gen-1",
		UserID:    "user-1",
		ResumeID:  "resume-1",
		JobID:     "job-1",
		Status:    StatusProcessing,
		CreatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO generations`).
		WithArgs(g.ID, g.UserID, g.ResumeID, g.JobID, g.Status, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkCompletedWritesPayloads(t *testing.T) {
	repo, mock := newMockRepo(t)

	feedback := json.RawMessage(`{"score":80}`)
	structured := json.RawMessage(`{"summary":"x"}`)

	mock.ExpectExec(`UPDATE generations\s+SET status = 'completed'`).
		WithArgs("gen-1", 80, []byte(feedback), []byte(structured)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkCompleted(context.Background(), "gen-1", 80, feedback, structured); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
}

func TestPGRepoMarkFailedClearsPayloads(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE generations\s+SET status = 'failed', score = NULL, feedback_json = NULL, structured_resume_data = NULL`).
		WithArgs("gen-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkFailed(context.Background(), "gen-1"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
}

func TestPGRepoTerminalMarksGuardOnProcessing(t *testing.T) {
	repo, mock := newMockRepo(t)

	// A row that already reached a terminal state matches zero rows.
	mock.ExpectExec(`(?s)SET status = 'completed'.*WHERE id = \$1 AND status = 'processing'`).
		WithArgs("gen-1", 80, []byte(`{}`), []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkCompleted(context.Background(), "gen-1", 80, json.RawMessage(`{}`), json.RawMessage(`{}`))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	mock.ExpectExec(`(?s)SET status = 'failed'.*WHERE id = \$1 AND status = 'processing'`).
		WithArgs("gen-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkFailed(context.Background(), "gen-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoSetPDFKeyOnlyWhenUnset(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE generations\s+SET pdf_key = \$2, updated_at = now\(\)\s+WHERE id = \$1 AND pdf_key IS NULL`).
		WithArgs("gen-1", "resumes-pdf/user-1/gen-1.pdf").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected is not an error: a concurrent render already won.
	if err := repo.SetPDFKey(context.Background(), "gen-1", "resumes-pdf/user-1/gen-1.pdf"); err != nil {
		t.Fatalf("SetPDFKey: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, user_id, resume_id`).
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
