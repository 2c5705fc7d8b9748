package generations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, g Generation) error {
	const query = `
INSERT INTO generations (id, user_id, resume_id, job_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		g.ID,
		g.UserID,
		g.ResumeID,
		g.JobID,
		g.Status,
		g.CreatedAt,
	)
	return err
}

const selectColumns = `
SELECT id, user_id, resume_id, job_id, status, score, feedback_json, structured_resume_data, pdf_key, created_at, updated_at
FROM generations`

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Generation, error) {
	query := selectColumns + `
WHERE user_id = $1 AND id = $2
LIMIT 1`
	g, err := scanGeneration(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Generation{}, ErrNotFound
		}
		return Generation{}, err
	}
	return g, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error) {
	query := selectColumns + `
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]Generation, error) {
	query := selectColumns + `
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM generations WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM generations`).Scan(&n)
	return n, err
}

func (r *PGRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM generations WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (r *PGRepo) MarkCompleted(ctx context.Context, id string, score int, feedback, structured json.RawMessage) error {
	const query = `
UPDATE generations
SET status = 'completed', score = $2, feedback_json = $3, structured_resume_data = $4, updated_at = now()
WHERE id = $1 AND status = 'processing'`
	res, err := r.DB.ExecContext(ctx, query, id, score, []byte(feedback), []byte(structured))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) MarkFailed(ctx context.Context, id string) error {
	const query = `
UPDATE generations
SET status = 'failed', score = NULL, feedback_json = NULL, structured_resume_data = NULL, updated_at = now()
WHERE id = $1 AND status = 'processing'`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) SetPDFKey(ctx context.Context, id, key string) error {
	const query = `
UPDATE generations
SET pdf_key = $2, updated_at = now()
WHERE id = $1 AND pdf_key IS NULL`
	_, err := r.DB.ExecContext(ctx, query, id, key)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (Generation, error) {
	var g Generation
	var resumeID, jobID, pdfKey sql.NullString
	var score sql.NullInt64
	var feedback, structured []byte
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&resumeID,
		&jobID,
		&g.Status,
		&score,
		&feedback,
		&structured,
		&pdfKey,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return Generation{}, err
	}
	g.ResumeID = resumeID.String
	g.JobID = jobID.String
	g.PDFKey = pdfKey.String
	if score.Valid {
		v := int(score.Int64)
		g.Score = &v
	}
	if len(feedback) > 0 {
		g.FeedbackJSON = json.RawMessage(feedback)
	}
	if len(structured) > 0 {
		g.StructuredResume = json.RawMessage(structured)
	}
	return g, nil
}

func collect(rows *sql.Rows) ([]Generation, error) {
	out := make([]Generation, 0)
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
