package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/studydeck/studydeck/internal/errors"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/repository"
	"github.com/studydeck/studydeck/internal/services"
	"github.com/studydeck/studydeck/internal/testutil/mocks"
)

const (
	testProfileID = int64(7)
	testDeckID    = "deck-1"
	testCardID    = "card-1"
)

type reviewFixture struct {
	cards   *mocks.MockCardRepository
	decks   *mocks.MockDeckRepository
	reviews *mocks.MockReviewRepository
	streaks *mocks.MockStreakRepository
	svc     services.ReviewService
}

func newReviewFixture(retries int) *reviewFixture {
	f := &reviewFixture{
		cards:   new(mocks.MockCardRepository),
		decks:   new(mocks.MockDeckRepository),
		reviews: new(mocks.MockReviewRepository),
		streaks: new(mocks.MockStreakRepository),
	}
	f.svc = services.NewReviewService(f.cards, f.decks, f.reviews, f.streaks, 20, retries)
	return f
}

func testCard() *models.Card {
	return &models.Card{ID: testCardID, DeckID: testDeckID, Front: "2+2?", Back: "4"}
}

func (f *reviewFixture) expectBestEffortSideEffects() {
	f.reviews.On("InsertHistory", mock.Anything, mock.Anything).Return(nil)
	f.streaks.On("Get", mock.Anything, testProfileID).Return(nil, nil)
	f.streaks.On("Upsert", mock.Anything, mock.Anything).Return(nil)
}

func TestSubmitReview_FirstReviewInsertsDefaultState(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(nil, nil)
	f.reviews.On("Insert", mock.Anything, mock.MatchedBy(func(rv models.Review) bool {
		return rv.RepetitionCount == 1 && rv.IntervalDays == 1 && rv.TotalReviews == 1
	})).Return(int64(11), nil)
	f.expectBestEffortSideEffects()

	review, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "good"})

	require.NoError(t, err)
	assert.Equal(t, int64(11), review.ID)
	assert.Equal(t, 1, review.RepetitionCount)
	assert.Equal(t, 1, review.IntervalDays)
	assert.InDelta(t, 2.5, review.EaseFactor, 1e-9, "good on a new card leaves the ease factor unchanged")
	assert.Equal(t, 1, review.TotalCorrect)
	assert.Equal(t, 0, review.TotalIncorrect)
	assert.InDelta(t, 4.0, review.AverageQuality, 1e-9)
	f.reviews.AssertExpectations(t)
}

func TestSubmitReview_ExistingStateAdvances(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	existing := &models.Review{
		ID: 11, ProfileID: testProfileID, CardID: testCardID,
		EaseFactor: 2.5, IntervalDays: 6, RepetitionCount: 2,
		NextReviewAt: time.Now().Add(-time.Hour),
		TotalReviews: 2, TotalCorrect: 2, AverageQuality: 4,
		Version: 2,
	}

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(existing, nil)
	f.reviews.On("Update", mock.Anything, mock.MatchedBy(func(rv models.Review) bool {
		return rv.Version == 2 && rv.RepetitionCount == 3 && rv.IntervalDays == 16
	})).Return(nil)
	f.expectBestEffortSideEffects()

	review, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "easy"})

	require.NoError(t, err)
	assert.Equal(t, 3, review.RepetitionCount)
	assert.Equal(t, 16, review.IntervalDays, "round(6 * 2.6)")
	assert.InDelta(t, 2.6, review.EaseFactor, 1e-9)
	assert.Equal(t, int64(3), review.Version, "version advances after a successful write")
	f.reviews.AssertExpectations(t)
}

func TestSubmitReview_RetriesOnConflict(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	existing := models.Review{
		ID: 11, ProfileID: testProfileID, CardID: testCardID,
		EaseFactor: 2.5, IntervalDays: 1, RepetitionCount: 1,
		Version: 4,
	}
	// Each attempt re-reads, so hand out a fresh copy per call.
	first, second := existing, existing

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(&first, nil).Once()
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(&second, nil).Once()
	f.reviews.On("Update", mock.Anything, mock.Anything).Return(repository.ErrConflict).Once()
	f.reviews.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.expectBestEffortSideEffects()

	review, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "good"})

	require.NoError(t, err)
	assert.Equal(t, 6, review.IntervalDays)
	f.reviews.AssertExpectations(t)
}

func TestSubmitReview_ConflictExhaustsRetries(t *testing.T) {
	f := newReviewFixture(2)
	ctx := context.Background()

	existing := models.Review{
		ID: 11, ProfileID: testProfileID, CardID: testCardID,
		EaseFactor: 2.5, IntervalDays: 1, RepetitionCount: 1,
	}
	first, second := existing, existing

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(&first, nil).Once()
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(&second, nil).Once()
	f.reviews.On("Update", mock.Anything, mock.Anything).Return(repository.ErrConflict)

	_, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "good"})

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	f.reviews.AssertNumberOfCalls(t, "Update", 2)
}

func TestSubmitReview_UnknownRatingRejected(t *testing.T) {
	f := newReviewFixture(3)

	_, err := f.svc.SubmitReview(context.Background(), testProfileID, testCardID, services.SubmitReviewInput{Rating: "perfect"})

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	f.reviews.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReview_CardNotFound(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	f.cards.On("Get", ctx, testCardID).Return(nil, nil)

	_, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "good"})

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestSubmitReview_CorruptStoredStateRejected(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	corrupt := &models.Review{
		ID: 11, ProfileID: testProfileID, CardID: testCardID,
		EaseFactor: 1.1, // below the algorithm floor
		IntervalDays: 5, RepetitionCount: 2,
	}

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(corrupt, nil)

	_, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "good"})

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	f.reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmitReview_FailedReviewCountsIncorrect(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	existing := &models.Review{
		ID: 11, ProfileID: testProfileID, CardID: testCardID,
		EaseFactor: 2.6, IntervalDays: 16, RepetitionCount: 3,
		TotalReviews: 3, TotalCorrect: 3, AverageQuality: 4.5,
	}

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(existing, nil)
	f.reviews.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.expectBestEffortSideEffects()

	review, err := f.svc.SubmitReview(ctx, testProfileID, testCardID, services.SubmitReviewInput{Rating: "again"})

	require.NoError(t, err)
	assert.Equal(t, 0, review.RepetitionCount)
	assert.Equal(t, 1, review.IntervalDays)
	assert.InDelta(t, 1.8, review.EaseFactor, 1e-9)
	assert.Equal(t, 1, review.TotalIncorrect)
	assert.Equal(t, 3, review.TotalCorrect)
}

func TestNextCard_NoneDue(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	f.decks.On("Get", ctx, testDeckID).Return(&models.Deck{ID: testDeckID, ProfileID: testProfileID}, nil)
	f.reviews.On("DueCards", mock.Anything, testProfileID, testDeckID, mock.Anything, 1).Return(nil, nil)

	card, err := f.svc.NextCard(ctx, testProfileID, testDeckID)

	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestNextCard_ReturnsFirstDue(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	due := []models.DueCard{{Card: *testCard()}}
	f.decks.On("Get", ctx, testDeckID).Return(&models.Deck{ID: testDeckID, ProfileID: testProfileID}, nil)
	f.reviews.On("DueCards", mock.Anything, testProfileID, testDeckID, mock.Anything, 1).Return(due, nil)

	card, err := f.svc.NextCard(ctx, testProfileID, testDeckID)

	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, testCardID, card.Card.ID)
	assert.Nil(t, card.Review, "a never-reviewed card carries no review state")
}

func TestStudyQueue_UsesBatchSize(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	due := []models.DueCard{{Card: *testCard()}, {Card: models.Card{ID: "card-2", DeckID: testDeckID}}}
	f.decks.On("Get", ctx, testDeckID).Return(&models.Deck{ID: testDeckID, ProfileID: testProfileID}, nil)
	f.reviews.On("DueCards", mock.Anything, testProfileID, testDeckID, mock.Anything, 20).Return(due, nil)

	queue, err := f.svc.StudyQueue(ctx, testProfileID, testDeckID)

	require.NoError(t, err)
	assert.Len(t, queue, 2)
	f.reviews.AssertExpectations(t)
}

func TestPreview_NewCardUsesDefaultState(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(nil, nil)

	preview, err := f.svc.Preview(ctx, testProfileID, testCardID)

	require.NoError(t, err)
	assert.Equal(t, 1, preview.Intervals.Again)
	assert.Equal(t, 1, preview.Intervals.Good, "first repetition is always one day")
	assert.Equal(t, "1 day", preview.Labels["good"])
	assert.Equal(t, "Easy", preview.Difficulty)
}

func TestPreview_AdvancedStateOrdersButtons(t *testing.T) {
	f := newReviewFixture(3)
	ctx := context.Background()

	existing := &models.Review{
		ProfileID: testProfileID, CardID: testCardID,
		EaseFactor: 2.5, IntervalDays: 6, RepetitionCount: 2,
	}
	f.cards.On("Get", ctx, testCardID).Return(testCard(), nil)
	f.reviews.On("Get", mock.Anything, testProfileID, testCardID).Return(existing, nil)

	preview, err := f.svc.Preview(ctx, testProfileID, testCardID)

	require.NoError(t, err)
	assert.Equal(t, 1, preview.Intervals.Again)
	assert.Less(t, preview.Intervals.Hard, preview.Intervals.Good)
	assert.Less(t, preview.Intervals.Good, preview.Intervals.Easy)
	assert.Equal(t, "2 weeks", preview.Labels["good"], "round(6*2.5)=15 days")
}
