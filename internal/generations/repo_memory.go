package generations

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Generation // id -> generation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Generation)}
}

func (r *MemoryRepo) Create(ctx context.Context, g Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g.UpdatedAt = g.CreatedAt
	r.data[g.ID] = g
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Generation, error) {
	if err := ctx.Err(); err != nil {
		return Generation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.data[id]
	if !ok || g.UserID != userID {
		return Generation{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Generation, 0)
	for _, g := range r.data {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return window(out, limit, offset), nil
}

func (r *MemoryRepo) ListAll(ctx context.Context, limit, offset int) ([]Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Generation, 0, len(r.data))
	for _, g := range r.data {
		out = append(out, g)
	}
	return window(out, limit, offset), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok || g.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data), nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, g := range r.data {
		if g.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) MarkCompleted(ctx context.Context, id string, score int, feedback, structured json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok || g.Status != StatusProcessing {
		// Terminal states never revert.
		return ErrNotFound
	}
	g.Status = StatusCompleted
	g.Score = &score
	g.FeedbackJSON = append(json.RawMessage(nil), feedback...)
	g.StructuredResume = append(json.RawMessage(nil), structured...)
	g.UpdatedAt = time.Now().UTC()
	r.data[id] = g
	return nil
}

func (r *MemoryRepo) MarkFailed(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok || g.Status != StatusProcessing {
		return ErrNotFound
	}
	g.Status = StatusFailed
	g.Score = nil
	g.FeedbackJSON = nil
	g.StructuredResume = nil
	g.UpdatedAt = time.Now().UTC()
	r.data[id] = g
	return nil
}

func (r *MemoryRepo) SetPDFKey(ctx context.Context, id, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if g.PDFKey != "" {
		return nil
	}
	g.PDFKey = key
	g.UpdatedAt = time.Now().UTC()
	r.data[id] = g
	return nil
}

func window(out []Generation, limit, offset int) []Generation {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Generation{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
