package jobs

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, j JobDescription) error {
	const query = `
INSERT INTO job_descriptions (id, user_id, title, company, raw_text, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		j.ID,
		j.UserID,
		j.Title,
		j.Company,
		j.RawText,
		j.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (JobDescription, error) {
	const query = `
SELECT id, user_id, title, company, raw_text, created_at
FROM job_descriptions
WHERE user_id = $1 AND id = $2
LIMIT 1`
	var j JobDescription
	err := r.DB.QueryRowContext(ctx, query, userID, id).Scan(
		&j.ID,
		&j.UserID,
		&j.Title,
		&j.Company,
		&j.RawText,
		&j.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobDescription{}, ErrNotFound
		}
		return JobDescription{}, err
	}
	return j, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]JobDescription, error) {
	const query = `
SELECT id, user_id, title, company, raw_text, created_at
FROM job_descriptions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobDescription, 0)
	for rows.Next() {
		var j JobDescription
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.RawText, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, j JobDescription) error {
	const query = `
UPDATE job_descriptions
SET title = $3, company = $4, raw_text = $5
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, j.UserID, j.ID, j.Title, j.Company, j.RawText)
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

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM job_descriptions WHERE user_id = $1 AND id = $2`, userID, id)
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
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM job_descriptions`).Scan(&n)
	return n, err
}

var _ Repo = (*PGRepo)(nil)
