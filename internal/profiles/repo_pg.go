package profiles

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, p Profile) error {
	const query = `
INSERT INTO profiles (id, email, full_name, avatar_url, role, credits, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.Email,
		nullableString(p.FullName),
		nullableString(p.AvatarURL),
		p.Role,
		p.Credits,
		nullableString(p.PasswordHash),
	)
	if err != nil && isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) Upsert(ctx context.Context, p Profile) error {
	const query = `
INSERT INTO profiles (id, email, full_name, avatar_url, role, credits, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  avatar_url = EXCLUDED.avatar_url`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.Email,
		nullableString(p.FullName),
		nullableString(p.AvatarURL),
		p.Role,
		p.Credits,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Profile, error) {
	const query = `
SELECT id, email, full_name, avatar_url, role, credits, password_hash, created_at
FROM profiles
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Profile, error) {
	const query = `
SELECT id, email, full_name, avatar_url, role, credits, password_hash, created_at
FROM profiles
WHERE lower(email) = lower($1)
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	const query = `
SELECT id, email, full_name, avatar_url, role, credits, password_hash, created_at
FROM profiles
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM profiles`).Scan(&n)
	return n, err
}

func (r *PGRepo) UpdateCredits(ctx context.Context, id string, credits int) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET credits = $2 WHERE id = $1`, id, credits)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) UpdateRole(ctx context.Context, id string, role string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DebitCredit uses a conditional update so concurrent generations can never
// take the balance below zero.
func (r *PGRepo) DebitCredit(ctx context.Context, id string) error {
	const query = `
UPDATE profiles
SET credits = credits - 1
WHERE id = $1 AND credits >= 1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var fullName, avatarURL, passwordHash sql.NullString
	err := row.Scan(
		&p.ID,
		&p.Email,
		&fullName,
		&avatarURL,
		&p.Role,
		&p.Credits,
		&passwordHash,
		&p.CreatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	p.PasswordHash = passwordHash.String
	return p, nil
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

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "SQLSTATE 23505")
}
