package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
)

type streakRepository struct {
	db *sql.DB
}

// NewStreakRepository creates a new StreakRepository implementation
func NewStreakRepository(db *sql.DB) repository.StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Get(ctx context.Context, profileID int64) (*models.Streak, error) {
	log := logger.FromContext(ctx).WithPrefix("streak_repo")

	var s models.Streak
	var lastDate sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT profile_id, current_streak, longest_streak, last_review_date, total_review_days, updated_at
FROM streaks
WHERE profile_id = ?
`, profileID).Scan(&s.ProfileID, &s.CurrentStreak, &s.LongestStreak, &lastDate, &s.TotalDays, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no streak yet: profile_id=%d", profileID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get streak: %v", err)
		return nil, err
	}
	if lastDate.Valid {
		s.LastReviewDate = lastDate.String
	}
	return &s, nil
}

func (r *streakRepository) Upsert(ctx context.Context, s models.Streak) error {
	log := logger.FromContext(ctx).WithPrefix("streak_repo")
	log.Debug("upserting streak: profile_id=%d, current=%d", s.ProfileID, s.CurrentStreak)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO streaks (profile_id, current_streak, longest_streak, last_review_date, total_review_days, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile_id) DO UPDATE SET
    current_streak = excluded.current_streak,
    longest_streak = excluded.longest_streak,
    last_review_date = excluded.last_review_date,
    total_review_days = excluded.total_review_days,
    updated_at = CURRENT_TIMESTAMP
`, s.ProfileID, s.CurrentStreak, s.LongestStreak, s.LastReviewDate, s.TotalDays)
	if err != nil {
		log.Error("failed to upsert streak: %v", err)
	}
	return err
}
