package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT d.id, d.profile_id, d.title, d.description, d.is_public, d.created_at, d.updated_at,
       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count
FROM decks d
WHERE d.id = ?
`, id).Scan(&d.ID, &d.ProfileID, &d.Title, &d.Description, &d.IsPublic, &d.CreatedAt, &d.UpdatedAt, &d.CardCount)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("deck not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks: profile_id=%d, title=%s, public_only=%v",
		filter.ProfileID, filter.Title, filter.PublicOnly)

	query := sqlBuilder.Select(
		"d.id", "d.profile_id", "d.title", "d.description", "d.is_public",
		"d.created_at", "d.updated_at",
		"(SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count",
	).From("decks d")

	// Dynamic WHERE clauses
	if filter.ProfileID != 0 && !filter.PublicOnly {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"d.profile_id": filter.ProfileID},
			squirrel.Eq{"d.is_public": true},
		})
	}
	if filter.PublicOnly {
		query = query.Where(squirrel.Eq{"d.is_public": true})
	}
	if filter.Title != "" {
		query = query.Where(squirrel.Like{"d.title": "%" + filter.Title + "%"})
	}
	query = query.OrderBy("d.updated_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build deck query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.Title, &d.Description, &d.IsPublic, &d.CreatedAt, &d.UpdatedAt, &d.CardCount); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s, title=%s", d.ID, d.Title)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO decks (id, profile_id, title, description, is_public)
VALUES (?, ?, ?, ?, ?)
`, d.ID, d.ProfileID, d.Title, d.Description, d.IsPublic)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
	}
	return err
}

func (r *deckRepository) Update(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("updating deck: id=%s", d.ID)

	_, err := r.db.ExecContext(ctx, `
UPDATE decks
SET title = ?, description = ?, is_public = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, d.Title, d.Description, d.IsPublic, d.ID)
	if err != nil {
		log.Error("failed to update deck: %v", err)
	}
	return err
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
	}
	return err
}
