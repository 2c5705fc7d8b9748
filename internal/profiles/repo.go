package profiles

import (
	"context"
	"errors"
)

var (
	ErrNotFound            = errors.New("profile not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type Repo interface {
	Create(ctx context.Context, p Profile) error
	Upsert(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, id string) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	List(ctx context.Context, limit, offset int) ([]Profile, error)
	Count(ctx context.Context) (int, error)
	UpdateCredits(ctx context.Context, id string, credits int) error
	UpdateRole(ctx context.Context, id string, role string) error
	Delete(ctx context.Context, id string) error

	// DebitCredit atomically decrements one credit, failing with
	// ErrInsufficientCredits when the balance is already zero.
	DebitCredit(ctx context.Context, id string) error
}
