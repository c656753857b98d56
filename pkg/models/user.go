package models

import (
	"database/sql"
	"time"
)

// User represents a Telegram user and their quiz preferences
type User struct {
	UserID                 int64        `json:"user_id" db:"user_id"`
	Username               string       `json:"username" db:"username"`
	FirstName              string       `json:"first_name" db:"first_name"`
	QuizSessionActive      bool         `json:"quiz_session_active" db:"quiz_session_active"`
	AutoQuizEnabled        bool         `json:"auto_quiz_enabled" db:"auto_quiz_enabled"`
	QuestionsPerSession    int          `json:"questions_per_session" db:"questions_per_session"`
	SessionIntervalMinutes int          `json:"session_interval_minutes" db:"session_interval_minutes"`
	LastAutoQuiz           sql.NullTime `json:"last_auto_quiz" db:"last_auto_quiz"`
	JoinedAt               time.Time    `json:"joined_at" db:"joined_at"`
}

// AutoQuizDue reports whether the user's auto-quiz interval has elapsed at now.
// A user who has never received an auto quiz is always due.
func (u *User) AutoQuizDue(now time.Time) bool {
	if !u.LastAutoQuiz.Valid {
		return true
	}
	interval := time.Duration(u.SessionIntervalMinutes) * time.Minute
	return now.Sub(u.LastAutoQuiz.Time) >= interval
}
