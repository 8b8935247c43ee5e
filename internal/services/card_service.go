package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/studydeck/studydeck/internal/errors"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
)

// CreateCardInput is the payload for creating a card.
type CreateCardInput struct {
	Front    string `json:"front" validate:"required,max=10000"`
	Back     string `json:"back" validate:"required,max=10000"`
	Tags     string `json:"tags" validate:"max=500"`
	Position int    `json:"position" validate:"min=0"`
}

// UpdateCardInput is the payload for updating a card. Nil fields are left
// unchanged.
type UpdateCardInput struct {
	Front    *string `json:"front" validate:"omitempty,min=1,max=10000"`
	Back     *string `json:"back" validate:"omitempty,min=1,max=10000"`
	Tags     *string `json:"tags" validate:"omitempty,max=500"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
}

// CardService handles flashcard business logic
type CardService interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
	ListCards(ctx context.Context, deckID string) ([]models.Card, error)
	CreateCard(ctx context.Context, profileID int64, deckID string, in CreateCardInput) (*models.Card, error)
	UpdateCard(ctx context.Context, profileID int64, id string, in UpdateCardInput) (*models.Card, error)
	DeleteCard(ctx context.Context, profileID int64, id string) error
}

type cardService struct {
	cards repository.CardRepository
	decks repository.DeckRepository
}

// NewCardService creates a new CardService
func NewCardService(cards repository.CardRepository, decks repository.DeckRepository) CardService {
	return &cardService{cards: cards, decks: decks}
}

func (s *cardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	c, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	return c, nil
}

func (s *cardService) ListCards(ctx context.Context, deckID string) ([]models.Card, error) {
	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *cardService) CreateCard(ctx context.Context, profileID int64, deckID string, in CreateCardInput) (*models.Card, error) {
	log := logger.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return nil, errors.NewValidationError("card", err.Error())
	}
	if err := s.requireOwnedDeck(ctx, profileID, deckID); err != nil {
		return nil, err
	}

	card := models.Card{
		ID:       uuid.NewString(),
		DeckID:   deckID,
		Front:    in.Front,
		Back:     in.Back,
		Tags:     in.Tags,
		Position: in.Position,
	}
	if err := s.cards.Insert(ctx, card); err != nil {
		log.Error("failed to create card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("card created: id=%s, deck_id=%s", card.ID, deckID)
	return s.GetCard(ctx, card.ID)
}

func (s *cardService) UpdateCard(ctx context.Context, profileID int64, id string, in UpdateCardInput) (*models.Card, error) {
	if err := validate.Struct(in); err != nil {
		return nil, errors.NewValidationError("card", err.Error())
	}

	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnedDeck(ctx, profileID, card.DeckID); err != nil {
		return nil, err
	}

	if in.Front != nil {
		card.Front = *in.Front
	}
	if in.Back != nil {
		card.Back = *in.Back
	}
	if in.Tags != nil {
		card.Tags = *in.Tags
	}
	if in.Position != nil {
		card.Position = *in.Position
	}

	if err := s.cards.Update(ctx, *card); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return s.GetCard(ctx, id)
}

func (s *cardService) DeleteCard(ctx context.Context, profileID int64, id string) error {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnedDeck(ctx, profileID, card.DeckID); err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, id); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *cardService) requireOwnedDeck(ctx context.Context, profileID int64, deckID string) error {
	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if deck == nil || deck.ProfileID != profileID {
		return errors.NewNotFoundError("deck", deckID)
	}
	return nil
}
