package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by Telegram ID, or nil if unknown
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	query := DB.Rebind("SELECT * FROM users WHERE user_id = ?")
	err := DB.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Ensure creates the user row if it doesn't exist and refreshes the profile
// fields Telegram gives us on every update
func (r *UserRepository) Ensure(ctx context.Context, userID int64, username, firstName string) error {
	query := DB.Rebind(`
		INSERT INTO users (user_id, username, first_name)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name
	`)
	if _, err := DB.ExecContext(ctx, query, userID, username, firstName); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// SessionActive reports whether the user has an active quiz session
func (r *UserRepository) SessionActive(ctx context.Context, userID int64) (bool, error) {
	var active bool
	query := DB.Rebind("SELECT quiz_session_active FROM users WHERE user_id = ?")
	err := DB.GetContext(ctx, &active, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get session flag: %w", err)
	}
	return active, nil
}

// SetSessionActive flips the active-session flag for a user
func (r *UserRepository) SetSessionActive(ctx context.Context, userID int64, active bool) error {
	query := DB.Rebind("UPDATE users SET quiz_session_active = ? WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, active, userID); err != nil {
		return fmt.Errorf("failed to set session flag: %w", err)
	}
	return nil
}

// SetAutoQuizEnabled toggles scheduled quiz delivery for a user
func (r *UserRepository) SetAutoQuizEnabled(ctx context.Context, userID int64, enabled bool) error {
	query := DB.Rebind("UPDATE users SET auto_quiz_enabled = ? WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, enabled, userID); err != nil {
		return fmt.Errorf("failed to set auto quiz flag: %w", err)
	}
	return nil
}

// QuestionsPerSession returns the user's session length preference, or zero
// for an unknown user
func (r *UserRepository) QuestionsPerSession(ctx context.Context, userID int64) (int, error) {
	var n int
	query := DB.Rebind("SELECT questions_per_session FROM users WHERE user_id = ?")
	err := DB.GetContext(ctx, &n, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get session length: %w", err)
	}
	return n, nil
}

// SetQuestionsPerSession updates the user's session length preference
func (r *UserRepository) SetQuestionsPerSession(ctx context.Context, userID int64, count int) error {
	query := DB.Rebind("UPDATE users SET questions_per_session = ? WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, count, userID); err != nil {
		return fmt.Errorf("failed to set session length: %w", err)
	}
	return nil
}

// SetSessionInterval updates the auto-quiz interval for a user
func (r *UserRepository) SetSessionInterval(ctx context.Context, userID int64, minutes int) error {
	query := DB.Rebind("UPDATE users SET session_interval_minutes = ? WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, minutes, userID); err != nil {
		return fmt.Errorf("failed to set session interval: %w", err)
	}
	return nil
}

// AutoQuizCandidates returns users with auto delivery enabled and no active
// session. Interval filtering happens in the scheduler, which also knows about
// questions held in memory.
func (r *UserRepository) AutoQuizCandidates(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := "SELECT * FROM users WHERE auto_quiz_enabled = true AND quiz_session_active = false"
	if DB.DriverName() != "postgres" {
		query = "SELECT * FROM users WHERE auto_quiz_enabled = 1 AND quiz_session_active = 0"
	}
	err := DB.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get auto quiz candidates: %w", err)
	}
	return users, nil
}

// TouchAutoQuiz records a successful auto-quiz delivery time
func (r *UserRepository) TouchAutoQuiz(ctx context.Context, userID int64, now time.Time) error {
	query := DB.Rebind("UPDATE users SET last_auto_quiz = ? WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, now, userID); err != nil {
		return fmt.Errorf("failed to update last auto quiz time: %w", err)
	}
	return nil
}
