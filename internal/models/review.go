package models

import (
	"time"

	"github.com/studydeck/studydeck/internal/sm2"
)

// Review is the per-profile, per-card scheduling row: the SM-2 state plus
// running counters. Version backs the optimistic-concurrency check on
// updates so two concurrent reviews of the same card cannot silently
// overwrite each other.
type Review struct {
	ID              int64     `json:"id"`
	ProfileID       int64     `json:"profile_id"`
	CardID          string    `json:"card_id"`
	EaseFactor      float64   `json:"ease_factor"`
	IntervalDays    int       `json:"interval_days"`
	RepetitionCount int       `json:"repetition_count"`
	NextReviewAt    time.Time `json:"next_review_at"`
	LastReviewedAt  time.Time `json:"last_reviewed_at,omitzero"`
	TotalReviews    int       `json:"total_reviews"`
	TotalCorrect    int       `json:"total_correct"`
	TotalIncorrect  int       `json:"total_incorrect"`
	AverageQuality  float64   `json:"average_quality"`
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// State extracts the scheduler state from a review row.
func (r Review) State() sm2.State {
	return sm2.State{
		EaseFactor:      r.EaseFactor,
		IntervalDays:    r.IntervalDays,
		RepetitionCount: r.RepetitionCount,
		NextReviewAt:    r.NextReviewAt,
		LastReviewedAt:  r.LastReviewedAt,
	}
}

// ApplyState writes a scheduler state back onto the review row.
func (r *Review) ApplyState(s sm2.State) {
	r.EaseFactor = s.EaseFactor
	r.IntervalDays = s.IntervalDays
	r.RepetitionCount = s.RepetitionCount
	r.NextReviewAt = s.NextReviewAt
	r.LastReviewedAt = s.LastReviewedAt
}

// NewReview returns the implicit default review row for a card a profile has
// never studied. Its zero NextReviewAt makes it immediately due.
func NewReview(profileID int64, cardID string) Review {
	r := Review{ProfileID: profileID, CardID: cardID}
	r.ApplyState(sm2.NewState())
	return r
}

// ReviewHistory records one submitted review.
type ReviewHistory struct {
	ID           int64     `json:"id"`
	ReviewID     int64     `json:"review_id"`
	Quality      int       `json:"quality"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	TimeSeconds  float64   `json:"time_seconds"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// DueCard pairs a card with its review row for study queues. Review is nil
// for never-studied cards, which are treated as due.
type DueCard struct {
	Card   Card    `json:"card"`
	Review *Review `json:"review,omitempty"`
}

// Streak tracks consecutive days with at least one review.
type Streak struct {
	ProfileID      int64     `json:"profile_id"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	LastReviewDate string    `json:"last_review_date,omitempty"` // YYYY-MM-DD
	TotalDays      int       `json:"total_review_days"`
	UpdatedAt      time.Time `json:"updated_at"`
}
