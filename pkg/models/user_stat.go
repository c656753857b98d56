package models

import "database/sql"

// UserStat tracks a user's rolling accuracy on a single word
type UserStat struct {
	ID                   int64        `json:"id" db:"id"`
	UserID               int64        `json:"user_id" db:"user_id"`
	WordID               int64        `json:"word_id" db:"word_id"`
	CorrectAnswers       int          `json:"correct_answers" db:"correct_answers"`
	TotalAnswers         int          `json:"total_answers" db:"total_answers"`
	LastAsked            sql.NullTime `json:"last_asked" db:"last_asked"`
	DifficultyMultiplier float64      `json:"difficulty_multiplier" db:"difficulty_multiplier"`
}

// SuccessRate returns the fraction of correct answers, or 0 with no answers
func (s *UserStat) SuccessRate() float64 {
	if s.TotalAnswers == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalAnswers)
}

// UserTotals aggregates a user's answers across all words
type UserTotals struct {
	TotalCorrect   int `json:"total_correct" db:"total_correct"`
	TotalQuestions int `json:"total_questions" db:"total_questions"`
}

// SuccessPercent returns the overall success rate as a percentage
func (t UserTotals) SuccessPercent() float64 {
	if t.TotalQuestions == 0 {
		return 0
	}
	return float64(t.TotalCorrect) / float64(t.TotalQuestions) * 100
}
