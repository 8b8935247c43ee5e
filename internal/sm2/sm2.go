// Package sm2 implements the SuperMemo SM-2 spaced-repetition algorithm.
// All functions are pure: they take the current review state and return a
// new one, leaving persistence to the caller.
package sm2

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// MinEaseFactor is the domain floor for the easiness factor.
	MinEaseFactor = 1.3
	// InitialEaseFactor is the ease factor assigned to a never-reviewed card.
	InitialEaseFactor = 2.5

	firstInterval   = 1 // days, after the first successful repetition
	secondInterval  = 6 // days, after the second successful repetition
	relearnInterval = 1 // days, after a failed review
)

var (
	// ErrQualityOutOfRange is returned when a quality rating falls outside 0-5.
	ErrQualityOutOfRange = errors.New("quality out of range")
	// ErrCorruptState is returned when an input state violates its invariants,
	// which indicates corrupted data in the store.
	ErrCorruptState = errors.New("corrupt review state")
)

// Quality is a learner's recall rating on the canonical SM-2 0-5 scale.
type Quality int

const (
	QualityBlackout  Quality = 0 // no recall at all
	QualityIncorrect Quality = 1 // wrong, but the answer rang a bell
	QualityFamiliar  Quality = 2 // wrong, answer felt easy once seen
	QualityDifficult Quality = 3 // correct with serious effort
	QualityHesitant  Quality = 4 // correct after some hesitation
	QualityPerfect   Quality = 5 // effortless recall
)

// The four rating buttons a study UI offers, mapped onto the 0-5 scale.
// Qualities 0-2 are the failure bucket; 3-5 succeed.
const (
	RatingAgain = QualityBlackout
	RatingHard  = QualityDifficult
	RatingGood  = QualityHesitant
	RatingEasy  = QualityPerfect
)

// QualityForRating maps a rating button name to its quality value.
func QualityForRating(name string) (Quality, error) {
	switch name {
	case "again":
		return RatingAgain, nil
	case "hard":
		return RatingHard, nil
	case "good":
		return RatingGood, nil
	case "easy":
		return RatingEasy, nil
	}
	return 0, fmt.Errorf("unknown rating %q", name)
}

// State is the per-learner, per-card scheduling state.
type State struct {
	EaseFactor      float64   `json:"ease_factor"`
	IntervalDays    int       `json:"interval_days"`
	RepetitionCount int       `json:"repetition_count"`
	NextReviewAt    time.Time `json:"next_review_at"`
	LastReviewedAt  time.Time `json:"last_reviewed_at,omitzero"`
}

// NewState returns the state of a never-reviewed card. Its zero NextReviewAt
// makes it immediately due.
func NewState() State {
	return State{EaseFactor: InitialEaseFactor}
}

// Validate rejects states whose invariants are already violated. Such a
// state can only come from a corrupted row; clamping it here would mask the
// corruption, so it is surfaced instead.
func (s State) Validate() error {
	if s.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: ease factor %.2f below minimum %.1f", ErrCorruptState, s.EaseFactor, MinEaseFactor)
	}
	if s.IntervalDays < 0 {
		return fmt.Errorf("%w: negative interval %d", ErrCorruptState, s.IntervalDays)
	}
	if s.RepetitionCount < 0 {
		return fmt.Errorf("%w: negative repetition count %d", ErrCorruptState, s.RepetitionCount)
	}
	return nil
}

// Review computes the state after a single review at the given quality.
// Out-of-range quality and invariant-violating input states are rejected,
// never coerced.
func Review(s State, q Quality, now time.Time) (State, error) {
	if q < QualityBlackout || q > QualityPerfect {
		return State{}, fmt.Errorf("%w: %d", ErrQualityOutOfRange, q)
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}

	// Standard SM-2 ease update, applied on failure as well.
	ef := s.EaseFactor + 0.1 - float64(QualityPerfect-q)*(0.08+float64(QualityPerfect-q)*0.02)
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	next := s
	next.EaseFactor = ef

	if q < QualityDifficult {
		next.RepetitionCount = 0
		next.IntervalDays = relearnInterval
	} else {
		switch s.RepetitionCount {
		case 0:
			next.IntervalDays = firstInterval
		case 1:
			next.IntervalDays = secondInterval
		default:
			next.IntervalDays = scaleInterval(s.IntervalDays, ef)
		}
		next.RepetitionCount = s.RepetitionCount + 1
	}

	next.LastReviewedAt = now
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	return next, nil
}

// scaleInterval multiplies an interval by the ease factor, rounding to the
// nearest whole day with a minimum of one day.
func scaleInterval(days int, ef float64) int {
	scaled := int(math.Round(float64(days) * ef))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

// Preview holds the interval each rating button would produce.
type Preview struct {
	Again int `json:"again"`
	Hard  int `json:"hard"`
	Good  int `json:"good"`
	Easy  int `json:"easy"`
}

// PreviewIntervals runs a hypothetical review for each rating button so the
// UI can caption its buttons before the learner commits. The input state is
// never mutated.
func PreviewIntervals(s State) (Preview, error) {
	now := time.Now()
	var p Preview
	for _, r := range []struct {
		q   Quality
		out *int
	}{
		{RatingAgain, &p.Again},
		{RatingHard, &p.Hard},
		{RatingGood, &p.Good},
		{RatingEasy, &p.Easy},
	} {
		next, err := Review(s, r.q, now)
		if err != nil {
			return Preview{}, err
		}
		*r.out = next.IntervalDays
	}
	return p, nil
}

// IsDue reports whether a card scheduled at next is due at now. The bound is
// closed: a card is due the moment its review time arrives. A zero next time
// (never reviewed) is always due.
func IsDue(next, now time.Time) bool {
	return !now.Before(next)
}

// DifficultyCategory classifies an ease factor into a display label. Bands
// are fixed and monotonic in the ease factor.
func DifficultyCategory(ef float64) string {
	switch {
	case ef >= 2.5:
		return "Easy"
	case ef >= 2.0:
		return "Medium"
	case ef >= 1.7:
		return "Hard"
	default:
		return "Very Hard"
	}
}

// EstimateInterval projects the interval a card would reach after the given
// number of consecutive successful repetitions at a constant ease factor.
func EstimateInterval(repetitions int, ef float64) int {
	switch {
	case repetitions <= 0:
		return 0
	case repetitions == 1:
		return firstInterval
	case repetitions == 2:
		return secondInterval
	}
	days := secondInterval
	for i := 3; i <= repetitions; i++ {
		days = scaleInterval(days, ef)
	}
	return days
}

// EstimateRetention estimates recall probability after the given number of
// days without review, using an exponential forgetting curve whose strength
// grows with the ease factor. The result is clamped to [0, 1].
func EstimateRetention(daysSince int, ef float64) float64 {
	if daysSince <= 0 {
		return 1
	}
	strength := ef * 4 // days until retention falls to 1/e
	r := math.Exp(-float64(daysSince) / strength)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// QualityDescription returns a human-readable description of a quality value.
func QualityDescription(q Quality) string {
	switch q {
	case QualityBlackout:
		return "Complete blackout, no recall"
	case QualityIncorrect:
		return "Incorrect, but the answer was recognized"
	case QualityFamiliar:
		return "Incorrect, but the answer felt familiar and easy"
	case QualityDifficult:
		return "Correct with serious difficulty"
	case QualityHesitant:
		return "Correct after some hesitation"
	case QualityPerfect:
		return "Perfect, effortless recall"
	}
	return "Unknown"
}
