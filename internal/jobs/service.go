package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minTitleLen       = 2
	minCompanyLen     = 2
	minDescriptionLen = 50
)

// Service contains business logic for job descriptions.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create validates and stores a new job description.
func (s *Service) Create(ctx context.Context, userID, title, company, rawText string) (JobDescription, error) {
	j := JobDescription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Company:   strings.TrimSpace(company),
		RawText:   strings.TrimSpace(rawText),
		CreatedAt: time.Now().UTC(),
	}
	if err := validate(j); err != nil {
		return JobDescription{}, err
	}
	if err := s.Repo.Create(ctx, j); err != nil {
		return JobDescription{}, err
	}
	return j, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (JobDescription, error) {
	if userID == "" || id == "" {
		return JobDescription{}, fmt.Errorf("%w: user id and job id are required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]JobDescription, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Update validates and replaces the mutable fields of a job description.
func (s *Service) Update(ctx context.Context, userID, id, title, company, rawText string) (JobDescription, error) {
	j := JobDescription{
		ID:      id,
		UserID:  userID,
		Title:   strings.TrimSpace(title),
		Company: strings.TrimSpace(company),
		RawText: strings.TrimSpace(rawText),
	}
	if err := validate(j); err != nil {
		return JobDescription{}, err
	}
	if err := s.Repo.Update(ctx, j); err != nil {
		return JobDescription{}, err
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("%w: user id and job id are required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, userID, id)
}

func validate(j JobDescription) error {
	if utf8.RuneCountInString(j.Title) < minTitleLen {
		return fmt.Errorf("%w: title must be at least %d characters", ErrInvalidInput, minTitleLen)
	}
	if utf8.RuneCountInString(j.Company) < minCompanyLen {
		return fmt.Errorf("%w: company must be at least %d characters", ErrInvalidInput, minCompanyLen)
	}
	if utf8.RuneCountInString(j.RawText) < minDescriptionLen {
		return fmt.Errorf("%w: description must be at least %d characters", ErrInvalidInput, minDescriptionLen)
	}
	return nil
}
