package generations

import (
	"context"
	"encoding/json"
)

type Repo interface {
	Create(ctx context.Context, g Generation) error
	GetByID(ctx context.Context, userID, id string) (Generation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error)
	ListAll(ctx context.Context, limit, offset int) ([]Generation, error)
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)

	// MarkCompleted records the pipeline outputs and flips the status in one
	// write so a completed row can never miss its payloads.
	MarkCompleted(ctx context.Context, id string, score int, feedback, structured json.RawMessage) error

	// MarkFailed flips the status and clears any partial payloads.
	MarkFailed(ctx context.Context, id string) error

	// SetPDFKey records the rendered PDF location exactly once.
	SetPDFKey(ctx context.Context, id, key string) error
}
