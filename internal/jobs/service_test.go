package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longDescription = "We are hiring a backend engineer to build and operate data-heavy services in Go and PostgreSQL."

func TestCreateValidatesFields(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	tests := []struct {
		name        string
		title       string
		company     string
		description string
		wantErr     bool
	}{
		{name: "valid", title: "Backend Engineer", company: "Initech", description: longDescription},
		{name: "short title", title: "x", company: "Initech", description: longDescription, wantErr: true},
		{name: "short company", title: "Backend Engineer", company: "y", description: longDescription, wantErr: true},
		{name: "short description", title: "Backend Engineer", company: "Initech", description: "too short", wantErr: true},
		{name: "whitespace only title", title: "   ", company: "Initech", description: longDescription, wantErr: true},
		{name: "boundary description", title: "Backend Engineer", company: "Initech", description: strings.Repeat("a", 50)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", tt.title, tt.company, tt.description)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput), "want ErrInvalidInput, got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateTrimsInput(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	j, err := svc.Create(context.Background(), "user-1", "  Backend Engineer  ", "  Initech  ", "  "+longDescription+"  ")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.Equal(t, "Initech", j.Company)
	assert.Equal(t, longDescription, j.RawText)
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", "Backend Engineer", "Initech", longDescription)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-1", created.ID, "Platform Engineer", "Initech", longDescription)
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateUnknownJob(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.Update(context.Background(), "user-1", "missing", "Backend Engineer", "Initech", longDescription)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetIsScopedToOwner(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", "Backend Engineer", "Initech", longDescription)
	require.NoError(t, err)

	_, err = svc.Get(ctx, "user-2", created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteRemovesJob(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", "Backend Engineer", "Initech", longDescription)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", created.ID))
	_, err = svc.Get(ctx, "user-1", created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
