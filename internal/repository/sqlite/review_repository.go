package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, profile_id, card_id, ease_factor, interval_days, repetition_count,
next_review_at, last_reviewed_at, total_reviews, total_correct, total_incorrect,
average_quality, version, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	var rv models.Review
	var lastReviewed sql.NullTime
	err := row.Scan(&rv.ID, &rv.ProfileID, &rv.CardID, &rv.EaseFactor, &rv.IntervalDays,
		&rv.RepetitionCount, &rv.NextReviewAt, &lastReviewed, &rv.TotalReviews,
		&rv.TotalCorrect, &rv.TotalIncorrect, &rv.AverageQuality, &rv.Version,
		&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		rv.LastReviewedAt = lastReviewed.Time
	}
	return &rv, nil
}

func (r *reviewRepository) Get(ctx context.Context, profileID int64, cardID string) (*models.Review, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	rv, err := scanReview(r.db.QueryRowContext(ctx, `
SELECT `+reviewColumns+`
FROM reviews
WHERE profile_id = ? AND card_id = ?
`, profileID, cardID))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no review state yet: profile_id=%d, card_id=%s", profileID, cardID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get review: %v", err)
		return nil, err
	}
	return rv, nil
}

func (r *reviewRepository) Insert(ctx context.Context, rv models.Review) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review: profile_id=%d, card_id=%s", rv.ProfileID, rv.CardID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reviews (profile_id, card_id, ease_factor, interval_days, repetition_count,
                     next_review_at, last_reviewed_at, total_reviews, total_correct,
                     total_incorrect, average_quality)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rv.ProfileID, rv.CardID, rv.EaseFactor, rv.IntervalDays, rv.RepetitionCount,
		rv.NextReviewAt, nullableTime(rv.LastReviewedAt), rv.TotalReviews,
		rv.TotalCorrect, rv.TotalIncorrect, rv.AverageQuality)
	if err != nil {
		// A unique violation means another writer created the row between our
		// read and this insert. Surface it as a conflict so the caller retries.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			log.Debug("concurrent insert detected: profile_id=%d, card_id=%s", rv.ProfileID, rv.CardID)
			return 0, repository.ErrConflict
		}
		log.Error("failed to insert review: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *reviewRepository) Update(ctx context.Context, rv models.Review) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("updating review: id=%d, version=%d, interval=%d, ease=%.2f",
		rv.ID, rv.Version, rv.IntervalDays, rv.EaseFactor)

	res, err := r.db.ExecContext(ctx, `
UPDATE reviews
SET ease_factor = ?, interval_days = ?, repetition_count = ?, next_review_at = ?,
    last_reviewed_at = ?, total_reviews = ?, total_correct = ?, total_incorrect = ?,
    average_quality = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND version = ?
`, rv.EaseFactor, rv.IntervalDays, rv.RepetitionCount, rv.NextReviewAt,
		nullableTime(rv.LastReviewedAt), rv.TotalReviews, rv.TotalCorrect,
		rv.TotalIncorrect, rv.AverageQuality, rv.ID, rv.Version)
	if err != nil {
		log.Error("failed to update review: %v", err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Debug("stale review version: id=%d, version=%d", rv.ID, rv.Version)
		return repository.ErrConflict
	}
	return nil
}

func (r *reviewRepository) DueCards(ctx context.Context, profileID int64, deckID string, now time.Time, limit int) ([]models.DueCard, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching due cards: profile_id=%d, deck_id=%s, limit=%d", profileID, deckID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.deck_id, c.front, c.back, c.tags, c.position, c.created_at, c.updated_at,
       r.id, r.profile_id, r.card_id, r.ease_factor, r.interval_days, r.repetition_count,
       r.next_review_at, r.last_reviewed_at, r.total_reviews, r.total_correct,
       r.total_incorrect, r.average_quality, r.version, r.created_at, r.updated_at
FROM cards c
LEFT JOIN reviews r ON r.card_id = c.id AND r.profile_id = ?
WHERE c.deck_id = ?
  AND (r.id IS NULL OR r.next_review_at <= ?)
ORDER BY r.id IS NULL DESC, r.next_review_at, c.position
LIMIT ?
`, profileID, deckID, now, limit)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var due []models.DueCard
	for rows.Next() {
		var c models.Card
		var reviewID sql.NullInt64
		var rvProfileID sql.NullInt64
		var rvCardID sql.NullString
		var ease sql.NullFloat64
		var interval, repetition, totalReviews, totalCorrect, totalIncorrect sql.NullInt64
		var nextReview, lastReviewed, rvCreated, rvUpdated sql.NullTime
		var avgQuality sql.NullFloat64
		var version sql.NullInt64

		if err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Tags, &c.Position,
			&c.CreatedAt, &c.UpdatedAt,
			&reviewID, &rvProfileID, &rvCardID, &ease, &interval, &repetition,
			&nextReview, &lastReviewed, &totalReviews, &totalCorrect, &totalIncorrect,
			&avgQuality, &version, &rvCreated, &rvUpdated); err != nil {
			log.Error("failed to scan due card row: %v", err)
			return nil, err
		}

		dc := models.DueCard{Card: c}
		if reviewID.Valid {
			rv := models.Review{
				ID:              reviewID.Int64,
				ProfileID:       rvProfileID.Int64,
				CardID:          rvCardID.String,
				EaseFactor:      ease.Float64,
				IntervalDays:    int(interval.Int64),
				RepetitionCount: int(repetition.Int64),
				NextReviewAt:    nextReview.Time,
				TotalReviews:    int(totalReviews.Int64),
				TotalCorrect:    int(totalCorrect.Int64),
				TotalIncorrect:  int(totalIncorrect.Int64),
				AverageQuality:  avgQuality.Float64,
				Version:         version.Int64,
				CreatedAt:       rvCreated.Time,
				UpdatedAt:       rvUpdated.Time,
			}
			if lastReviewed.Valid {
				rv.LastReviewedAt = lastReviewed.Time
			}
			dc.Review = &rv
		}
		due = append(due, dc)
	}
	log.Debug("found %d due cards", len(due))
	return due, rows.Err()
}

func (r *reviewRepository) CountDue(ctx context.Context, profileID int64, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM reviews
WHERE profile_id = ? AND next_review_at <= ?
`, profileID, now).Scan(&count)
	if err != nil {
		log.Error("failed to count due reviews: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *reviewRepository) ListByProfile(ctx context.Context, profileID int64) ([]models.Review, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT `+reviewColumns+`
FROM reviews
WHERE profile_id = ?
ORDER BY next_review_at
`, profileID)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) InsertHistory(ctx context.Context, h models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review history: review_id=%d, quality=%d", h.ReviewID, h.Quality)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (review_id, quality, interval_days, ease_factor, time_seconds)
VALUES (?, ?, ?, ?, ?)
`, h.ReviewID, h.Quality, h.IntervalDays, h.EaseFactor, h.TimeSeconds)
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
