package models

import "time"

// Deck is a collection of flashcards owned by a profile.
type Deck struct {
	ID          string    `json:"id"`
	ProfileID   int64     `json:"profile_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeckFilter narrows deck listings. Zero values are ignored.
type DeckFilter struct {
	ProfileID  int64
	Title      string
	PublicOnly bool
}

// Card is a single flashcard within a deck.
type Card struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Tags      string    `json:"tags,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
