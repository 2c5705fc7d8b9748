package jobs

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("job description not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Repo interface {
	Create(ctx context.Context, j JobDescription) error
	GetByID(ctx context.Context, userID, id string) (JobDescription, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]JobDescription, error)
	Update(ctx context.Context, j JobDescription) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context) (int, error)
}
