package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/studydeck/studydeck/internal/errors"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
	"github.com/studydeck/studydeck/internal/sm2"
)

// SubmitReviewInput is the payload for submitting a card review.
type SubmitReviewInput struct {
	Rating      string  `json:"rating" validate:"required,oneof=again hard good easy"`
	TimeSeconds float64 `json:"time_seconds" validate:"min=0"`
}

// PreviewResult captions the four rating buttons for a card.
type PreviewResult struct {
	Intervals  sm2.Preview       `json:"intervals"`
	Labels     map[string]string `json:"labels"`
	Difficulty string            `json:"difficulty"`
}

// ReviewService handles study flow business logic: picking the next due
// card, submitting reviews through the SM-2 scheduler, and previewing
// outcomes.
type ReviewService interface {
	NextCard(ctx context.Context, profileID int64, deckID string) (*models.DueCard, error)
	StudyQueue(ctx context.Context, profileID int64, deckID string) ([]models.DueCard, error)
	SubmitReview(ctx context.Context, profileID int64, cardID string, in SubmitReviewInput) (*models.Review, error)
	Preview(ctx context.Context, profileID int64, cardID string) (*PreviewResult, error)
}

type reviewService struct {
	cards     repository.CardRepository
	decks     repository.DeckRepository
	reviews   repository.ReviewRepository
	streaks   repository.StreakRepository
	batchSize int
	retries   int
}

// NewReviewService creates a new ReviewService. batchSize caps the study
// queue length; retries bounds how many times a conflicting
// read-modify-write is reattempted.
func NewReviewService(
	cards repository.CardRepository,
	decks repository.DeckRepository,
	reviews repository.ReviewRepository,
	streaks repository.StreakRepository,
	batchSize int,
	retries int,
) ReviewService {
	if batchSize < 1 {
		batchSize = 1
	}
	if retries < 1 {
		retries = 1
	}
	return &reviewService{
		cards:     cards,
		decks:     decks,
		reviews:   reviews,
		streaks:   streaks,
		batchSize: batchSize,
		retries:   retries,
	}
}

func (s *reviewService) NextCard(ctx context.Context, profileID int64, deckID string) (*models.DueCard, error) {
	due, err := s.dueCards(ctx, profileID, deckID, 1)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		logger.FromContext(ctx).Debug("no cards due in deck %s", deckID)
		return nil, nil
	}
	return &due[0], nil
}

func (s *reviewService) StudyQueue(ctx context.Context, profileID int64, deckID string) ([]models.DueCard, error) {
	return s.dueCards(ctx, profileID, deckID, s.batchSize)
}

func (s *reviewService) dueCards(ctx context.Context, profileID int64, deckID string, limit int) ([]models.DueCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("fetching due cards: profile_id=%d, deck_id=%s, limit=%d", profileID, deckID, limit)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	due, err := s.reviews.DueCards(ctx, profileID, deckID, time.Now(), limit)
	if err != nil {
		log.Error("failed to fetch due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return due, nil
}

func (s *reviewService) SubmitReview(ctx context.Context, profileID int64, cardID string, in SubmitReviewInput) (*models.Review, error) {
	log := logger.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return nil, errors.NewValidationError("review", err.Error())
	}
	quality, err := sm2.QualityForRating(in.Rating)
	if err != nil {
		return nil, errors.NewValidationError("rating", err.Error())
	}

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}

	// Read-modify-write with an optimistic-concurrency check. A concurrent
	// review of the same card (double submit) surfaces as a conflict; the
	// loop re-reads and reapplies rather than overwriting the other write.
	var updated *models.Review
	for attempt := 1; ; attempt++ {
		updated, err = s.applyReview(ctx, profileID, cardID, quality)
		if err == nil {
			break
		}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeConflict && attempt < s.retries {
			log.Warn("review conflict on card %s, retrying (attempt %d)", cardID, attempt)
			continue
		}
		return nil, err
	}

	// History and streak updates are best-effort; the review itself stands.
	history := models.ReviewHistory{
		ReviewID:     updated.ID,
		Quality:      int(quality),
		IntervalDays: updated.IntervalDays,
		EaseFactor:   updated.EaseFactor,
		TimeSeconds:  in.TimeSeconds,
	}
	if err := s.reviews.InsertHistory(ctx, history); err != nil {
		log.Warn("failed to store review history: %v", err)
	}
	if err := s.bumpStreak(ctx, profileID, updated.LastReviewedAt); err != nil {
		log.Warn("failed to update streak: %v", err)
	}

	log.Info("review submitted: card_id=%s, rating=%s, next_interval=%d days", cardID, in.Rating, updated.IntervalDays)
	return updated, nil
}

// applyReview performs one read-modify-write attempt against the Review
// Store, returning a CONFLICT AppError when the store reports a race.
func (s *reviewService) applyReview(ctx context.Context, profileID int64, cardID string, quality sm2.Quality) (*models.Review, error) {
	now := time.Now()

	rv, err := s.reviews.Get(ctx, profileID, cardID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	fresh := rv == nil
	if fresh {
		r := models.NewReview(profileID, cardID)
		rv = &r
	}

	state, err := sm2.Review(rv.State(), quality, now)
	if err != nil {
		// Out-of-range quality is caught earlier, so this means the stored
		// state violates its invariants. Refuse to compound the corruption.
		return nil, errors.NewValidationError("review_state", err.Error())
	}
	rv.ApplyState(state)

	rv.TotalReviews++
	if quality >= sm2.QualityDifficult {
		rv.TotalCorrect++
	} else {
		rv.TotalIncorrect++
	}
	rv.AverageQuality += (float64(quality) - rv.AverageQuality) / float64(rv.TotalReviews)

	if fresh {
		id, err := s.reviews.Insert(ctx, *rv)
		if stderrors.Is(err, repository.ErrConflict) {
			return nil, errors.NewConflictError("review", cardID)
		}
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		rv.ID = id
		return rv, nil
	}

	err = s.reviews.Update(ctx, *rv)
	if stderrors.Is(err, repository.ErrConflict) {
		return nil, errors.NewConflictError("review", cardID)
	}
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	rv.Version++
	return rv, nil
}

func (s *reviewService) Preview(ctx context.Context, profileID int64, cardID string) (*PreviewResult, error) {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}

	state := sm2.NewState()
	if rv, err := s.reviews.Get(ctx, profileID, cardID); err != nil {
		return nil, errors.NewInternalError(err)
	} else if rv != nil {
		state = rv.State()
	}

	intervals, err := sm2.PreviewIntervals(state)
	if err != nil {
		return nil, errors.NewValidationError("review_state", err.Error())
	}

	return &PreviewResult{
		Intervals: intervals,
		Labels: map[string]string{
			"again": sm2.IntervalLabel(intervals.Again),
			"hard":  sm2.IntervalLabel(intervals.Hard),
			"good":  sm2.IntervalLabel(intervals.Good),
			"easy":  sm2.IntervalLabel(intervals.Easy),
		},
		Difficulty: sm2.DifficultyCategory(state.EaseFactor),
	}, nil
}

// bumpStreak advances the reviewer's daily streak for the review performed
// at reviewedAt.
func (s *reviewService) bumpStreak(ctx context.Context, profileID int64, reviewedAt time.Time) error {
	today := reviewedAt.Format("2006-01-02")
	yesterday := reviewedAt.AddDate(0, 0, -1).Format("2006-01-02")

	streak, err := s.streaks.Get(ctx, profileID)
	if err != nil {
		return err
	}
	if streak == nil {
		streak = &models.Streak{ProfileID: profileID}
	}
	if streak.LastReviewDate == today {
		return nil // already counted today
	}

	if streak.LastReviewDate == yesterday {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastReviewDate = today
	streak.TotalDays++

	return s.streaks.Upsert(ctx, *streak)
}
