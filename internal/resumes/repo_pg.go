package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume row.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, storage_key, file_name, size_bytes, extracted_text, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.StorageKey,
		res.FileName,
		res.SizeBytes,
		res.ExtractedText,
		res.CreatedAt,
	)
	return err
}

// GetByID fetches a resume scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Resume, error) {
	const query = `
SELECT id, user_id, storage_key, file_name, size_bytes, extracted_text, created_at
FROM resumes
WHERE user_id = $1 AND id = $2
LIMIT 1`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByUser lists resumes newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	const query = `
SELECT id, user_id, storage_key, file_name, size_bytes, extracted_text, created_at
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Delete removes a resume row scoped to its owner.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE user_id = $1 AND id = $2`, userID, id)
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

// Count returns the total number of resumes across all users.
func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM resumes`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var fileName, extractedText sql.NullString
	var sizeBytes sql.NullInt64
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.StorageKey,
		&fileName,
		&sizeBytes,
		&extractedText,
		&res.CreatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	res.FileName = fileName.String
	res.SizeBytes = sizeBytes.Int64
	res.ExtractedText = extractedText.String
	return res, nil
}

var _ Repo = (*PGRepo)(nil)
