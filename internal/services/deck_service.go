package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/studydeck/studydeck/internal/errors"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
)

// validate is shared by all service input structs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateDeckInput is the payload for creating a deck.
type CreateDeckInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    bool   `json:"is_public"`
}

// UpdateDeckInput is the payload for updating a deck. Nil fields are left
// unchanged.
type UpdateDeckInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
}

// DeckService handles deck business logic
type DeckService interface {
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error)
	CreateDeck(ctx context.Context, profileID int64, in CreateDeckInput) (*models.Deck, error)
	UpdateDeck(ctx context.Context, profileID int64, id string, in UpdateDeckInput) (*models.Deck, error)
	DeleteDeck(ctx context.Context, profileID int64, id string) error
}

type deckService struct {
	decks repository.DeckRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository) DeckService {
	return &deckService{decks: decks}
}

func (s *deckService) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	d, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if d == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return d, nil
}

func (s *deckService) ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) CreateDeck(ctx context.Context, profileID int64, in CreateDeckInput) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return nil, errors.NewValidationError("deck", err.Error())
	}

	deck := models.Deck{
		ID:          uuid.NewString(),
		ProfileID:   profileID,
		Title:       in.Title,
		Description: in.Description,
		IsPublic:    in.IsPublic,
	}
	if err := s.decks.Insert(ctx, deck); err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("deck created: id=%s, title=%s", deck.ID, deck.Title)
	return s.GetDeck(ctx, deck.ID)
}

func (s *deckService) UpdateDeck(ctx context.Context, profileID int64, id string, in UpdateDeckInput) (*models.Deck, error) {
	if err := validate.Struct(in); err != nil {
		return nil, errors.NewValidationError("deck", err.Error())
	}

	deck, err := s.ownedDeck(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		deck.Title = *in.Title
	}
	if in.Description != nil {
		deck.Description = *in.Description
	}
	if in.IsPublic != nil {
		deck.IsPublic = *in.IsPublic
	}

	if err := s.decks.Update(ctx, *deck); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return s.GetDeck(ctx, id)
}

func (s *deckService) DeleteDeck(ctx context.Context, profileID int64, id string) error {
	if _, err := s.ownedDeck(ctx, profileID, id); err != nil {
		return err
	}
	if err := s.decks.Delete(ctx, id); err != nil {
		return errors.NewInternalError(err)
	}
	logger.FromContext(ctx).Info("deck deleted: id=%s", id)
	return nil
}

// ownedDeck loads a deck and verifies the profile owns it. Decks are only
// mutable by their owner; public decks are readable by anyone.
func (s *deckService) ownedDeck(ctx context.Context, profileID int64, id string) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil || deck.ProfileID != profileID {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}
