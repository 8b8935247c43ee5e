package repository

import (
	"context"
	"errors"
	"time"

	"github.com/studydeck/studydeck/internal/models"
)

// ErrConflict is returned by ReviewRepository.Update when the row changed
// between read and write. Callers re-read and retry.
var ErrConflict = errors.New("review modified concurrently")

// ProfileRepository handles learner profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, name string) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) error
	Update(ctx context.Context, deck models.Deck) error
	Delete(ctx context.Context, id string) error
}

// CardRepository handles flashcard data access
type CardRepository interface {
	Get(ctx context.Context, id string) (*models.Card, error)
	ListByDeck(ctx context.Context, deckID string) ([]models.Card, error)
	Insert(ctx context.Context, card models.Card) error
	Update(ctx context.Context, card models.Card) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository is the Review Store: per-profile, per-card scheduling
// state with an optimistic-concurrency discipline on updates.
type ReviewRepository interface {
	// Get returns nil when the profile has never reviewed the card.
	Get(ctx context.Context, profileID int64, cardID string) (*models.Review, error)
	Insert(ctx context.Context, review models.Review) (int64, error)
	// Update writes the row only if review.Version still matches the stored
	// version, returning ErrConflict otherwise.
	Update(ctx context.Context, review models.Review) error
	// DueCards returns cards in the deck that are due at the given time,
	// never-reviewed cards first, then by earliest next review.
	DueCards(ctx context.Context, profileID int64, deckID string, now time.Time, limit int) ([]models.DueCard, error)
	CountDue(ctx context.Context, profileID int64, now time.Time) (int, error)
	ListByProfile(ctx context.Context, profileID int64) ([]models.Review, error)
	InsertHistory(ctx context.Context, h models.ReviewHistory) error
}

// StreakRepository handles review streak data access
type StreakRepository interface {
	Get(ctx context.Context, profileID int64) (*models.Streak, error)
	Upsert(ctx context.Context, streak models.Streak) error
}
