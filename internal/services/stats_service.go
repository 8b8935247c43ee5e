package services

import (
	"context"
	"time"

	"github.com/studydeck/studydeck/internal/errors"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
	"github.com/studydeck/studydeck/internal/sm2"
)

// StatsService summarizes a profile's study status.
type StatsService interface {
	StudyStats(ctx context.Context, profileID int64) (*models.StudyStats, error)
}

type statsService struct {
	reviews repository.ReviewRepository
	streaks repository.StreakRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(reviews repository.ReviewRepository, streaks repository.StreakRepository) StatsService {
	return &statsService{reviews: reviews, streaks: streaks}
}

func (s *statsService) StudyStats(ctx context.Context, profileID int64) (*models.StudyStats, error) {
	log := logger.FromContext(ctx)
	now := time.Now()

	dueCount, err := s.reviews.CountDue(ctx, profileID, now)
	if err != nil {
		log.Error("failed to count due reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}

	reviews, err := s.reviews.ListByProfile(ctx, profileID)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats := &models.StudyStats{
		DueCount:     dueCount,
		TotalCards:   len(reviews),
		ByDifficulty: map[string]int{},
	}

	var correct, total int
	for _, rv := range reviews {
		stats.TotalReviews += rv.TotalReviews
		correct += rv.TotalCorrect
		total += rv.TotalReviews
		stats.ByDifficulty[sm2.DifficultyCategory(rv.EaseFactor)]++

		if !rv.LastReviewedAt.IsZero() {
			daysSince := int(now.Sub(rv.LastReviewedAt).Hours() / 24)
			stats.Retention = append(stats.Retention, models.CardRetention{
				CardID:    rv.CardID,
				DaysSince: daysSince,
				Retention: sm2.EstimateRetention(daysSince, rv.EaseFactor),
			})
		}
	}
	if total > 0 {
		stats.AccuracyPercent = 100 * float64(correct) / float64(total)
	}

	streak, err := s.streaks.Get(ctx, profileID)
	if err != nil {
		log.Warn("failed to load streak: %v", err)
	} else {
		stats.Streak = streak
	}

	return stats, nil
}
