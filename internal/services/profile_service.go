package services

import (
	"context"
	"strings"

	"github.com/studydeck/studydeck/internal/errors"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
)

// ProfileService handles learner profile business logic
type ProfileService interface {
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, name string) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
}

type profileService struct {
	profiles repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profiles repository.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("profile", id)
	}
	return p, nil
}

func (s *profileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return profiles, nil
}

func (s *profileService) CreateProfile(ctx context.Context, name string) (*models.Profile, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if len(name) > 64 {
		return nil, errors.NewValidationError("name", "must be at most 64 characters")
	}

	p, err := s.profiles.Create(ctx, name)
	if err != nil {
		log.Error("failed to create profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("profile created: id=%d, name=%s", p.ID, p.Name)
	return p, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id int64) error {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if p == nil {
		return errors.NewNotFoundError("profile", id)
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}
