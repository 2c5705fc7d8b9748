package profiles

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo          Repo
	SignupCredits int
}

func NewService(repo Repo, signupCredits int) *Service {
	return &Service{Repo: repo, SignupCredits: signupCredits}
}

// Register creates a profile for a new password-based account and returns
// it as persisted, with the signup credits seeded. The caller supplies an
// already-hashed password.
func (s *Service) Register(ctx context.Context, p Profile) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Email) == "" {
		return Profile{}, errors.New("profile id and email are required")
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
	p.Credits = s.SignupCredits
	if err := s.Repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpsertFromAuth persists the identity from OAuth login, seeding credits on
// first sight and leaving the balance alone on later logins.
func (s *Service) UpsertFromAuth(ctx context.Context, p Profile) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Email) == "" {
		return errors.New("profile id and email are required")
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
	p.Credits = s.SignupCredits
	return s.Repo.Upsert(ctx, p)
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Profile{}, errors.New("profile id is required")
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(email) == "" {
		return Profile{}, errors.New("email is required")
	}
	return s.Repo.GetByEmail(ctx, email)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("profiles service not configured")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	if s == nil || s.Repo == nil {
		return 0, errors.New("profiles service not configured")
	}
	return s.Repo.Count(ctx)
}

func (s *Service) SetCredits(ctx context.Context, id string, credits int) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	if credits < 0 {
		return errors.New("credits must be non-negative")
	}
	return s.Repo.UpdateCredits(ctx, id, credits)
}

func (s *Service) SetRole(ctx context.Context, id string, role string) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	if role != RoleUser && role != RoleAdmin {
		return errors.New("role must be user or admin")
	}
	return s.Repo.UpdateRole(ctx, id, role)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) DebitCredit(ctx context.Context, id string) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	return s.Repo.DebitCredit(ctx, id)
}
