package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
)

// Service contains business logic for resumes.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

func NewService(store object.ObjectStore, repo Repo) *Service {
	return &Service{Store: store, Repo: repo}
}

// Upload saves the file to object storage, extracts its text and records
// the resume row. Extraction never blocks the upload: unparseable files get
// a placeholder so a later generation still has input.
// Upload stores the blob and extracts text using the media type the client
// declared for the file, not whatever the store sniffs from the bytes.
func (s *Service) Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (Resume, error) {
	if fileName == "" {
		return Resume{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Resume{}, err
	}
	if len(data) == 0 {
		return Resume{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	storageKey, size, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, err
	}

	res := Resume{
		ID:            uuid.NewString(),
		UserID:        userID,
		FileName:      fileName,
		SizeBytes:     size,
		StorageKey:    storageKey,
		ExtractedText: extract.BestEffort(ctx, data, mimeType, fileName),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, res); err != nil {
		// Roll back the blob so storage does not accumulate orphans.
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil && !errors.Is(delErr, object.ErrNotFound) {
			telemetry.Warn("orphaned resume blob after failed insert", map[string]any{
				"storage_key": storageKey,
				"error":       delErr.Error(),
			})
		}
		return Resume{}, err
	}

	return res, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if userID == "" || id == "" {
		return Resume{}, fmt.Errorf("%w: user id and resume id are required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes the stored file first and the row second, so a crash in
// between leaves a row pointing at a missing blob rather than an orphaned
// blob nobody can reach.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, res.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		return err
	}

	return s.Repo.Delete(ctx, userID, id)
}
