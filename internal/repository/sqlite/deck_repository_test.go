package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
	"github.com/studydeck/studydeck/internal/repository/sqlite"
	"github.com/studydeck/studydeck/internal/testutil"
)

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) createProfile(name string) int64 {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles (name) VALUES (?)`, name)
	s.Require().NoError(err)

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM profiles WHERE name = ?`, name).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *DeckRepositorySuite) TestInsertGetUpdateDelete() {
	ctx := context.Background()
	profileID := s.createProfile("alice")

	deck := models.Deck{
		ID:          "deck-1",
		ProfileID:   profileID,
		Title:       "Spanish Vocabulary",
		Description: "A1 words",
	}
	s.Require().NoError(s.repo.Insert(ctx, deck))

	got, err := s.repo.Get(ctx, "deck-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("Spanish Vocabulary", got.Title)
	s.Equal(0, got.CardCount)
	s.False(got.IsPublic)

	got.Title = "Spanish A1"
	got.IsPublic = true
	s.Require().NoError(s.repo.Update(ctx, *got))

	updated, err := s.repo.Get(ctx, "deck-1")
	s.Require().NoError(err)
	s.Equal("Spanish A1", updated.Title)
	s.True(updated.IsPublic)

	s.Require().NoError(s.repo.Delete(ctx, "deck-1"))
	gone, err := s.repo.Get(ctx, "deck-1")
	s.Require().NoError(err)
	s.Nil(gone)
}

func (s *DeckRepositorySuite) TestGetCountsCards() {
	ctx := context.Background()
	profileID := s.createProfile("alice")

	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "deck-1", ProfileID: profileID, Title: "Deck"}))
	for _, cardID := range []string{"c1", "c2", "c3"} {
		_, err := s.db.ExecContext(ctx, `INSERT INTO cards (id, deck_id, front, back) VALUES (?, ?, ?, ?)`,
			cardID, "deck-1", "f", "b")
		s.Require().NoError(err)
	}

	got, err := s.repo.Get(ctx, "deck-1")
	s.Require().NoError(err)
	s.Equal(3, got.CardCount)
}

func (s *DeckRepositorySuite) TestListFiltersByOwnershipAndVisibility() {
	ctx := context.Background()
	alice := s.createProfile("alice")
	bob := s.createProfile("bob")

	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d-alice", ProfileID: alice, Title: "Alice private"}))
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d-bob-private", ProfileID: bob, Title: "Bob private"}))
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d-bob-public", ProfileID: bob, Title: "Bob shared", IsPublic: true}))

	decks, err := s.repo.List(ctx, models.DeckFilter{ProfileID: alice})
	s.Require().NoError(err)
	s.Require().Len(decks, 2, "own decks plus public decks of others")

	ids := make(map[string]bool, len(decks))
	for _, d := range decks {
		ids[d.ID] = true
	}
	s.True(ids["d-alice"])
	s.True(ids["d-bob-public"])
	s.False(ids["d-bob-private"])

	public, err := s.repo.List(ctx, models.DeckFilter{PublicOnly: true})
	s.Require().NoError(err)
	s.Require().Len(public, 1)
	s.Equal("d-bob-public", public[0].ID)
}

func (s *DeckRepositorySuite) TestListFiltersByTitle() {
	ctx := context.Background()
	profileID := s.createProfile("alice")

	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d1", ProfileID: profileID, Title: "Spanish verbs"}))
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d2", ProfileID: profileID, Title: "French nouns"}))

	decks, err := s.repo.List(ctx, models.DeckFilter{ProfileID: profileID, Title: "span"})
	s.Require().NoError(err)
	s.Require().Len(decks, 1)
	s.Equal("d1", decks[0].ID)
}

func (s *DeckRepositorySuite) TestDeleteCascadesToCardsAndReviews() {
	ctx := context.Background()
	profileID := s.createProfile("alice")

	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "deck-1", ProfileID: profileID, Title: "Deck"}))
	_, err := s.db.ExecContext(ctx, `INSERT INTO cards (id, deck_id, front, back) VALUES (?, ?, ?, ?)`,
		"c1", "deck-1", "f", "b")
	s.Require().NoError(err)
	_, err = s.db.ExecContext(ctx, `INSERT INTO reviews (profile_id, card_id) VALUES (?, ?)`, profileID, "c1")
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, "deck-1"))

	var cardCount, reviewCount int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&cardCount))
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&reviewCount))
	s.Zero(cardCount)
	s.Zero(reviewCount)
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}
