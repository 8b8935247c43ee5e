package models

// StudyStats summarizes a profile's study status.
type StudyStats struct {
	DueCount        int             `json:"due_count"`
	TotalCards      int             `json:"total_cards"`
	TotalReviews    int             `json:"total_reviews"`
	AccuracyPercent float64         `json:"accuracy_percent"`
	ByDifficulty    map[string]int  `json:"by_difficulty"`
	Retention       []CardRetention `json:"retention,omitempty"`
	Streak          *Streak         `json:"streak,omitempty"`
}

// CardRetention is the estimated recall probability for one studied card.
type CardRetention struct {
	CardID    string  `json:"card_id"`
	DaysSince int     `json:"days_since_review"`
	Retention float64 `json:"retention"`
}
