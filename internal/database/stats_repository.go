package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// StatsRepository handles database operations for per-word answer statistics
type StatsRepository struct{}

// NewStatsRepository creates a new repository instance
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// GetByUserAndWord returns the stat row for a (user, word) pair, or nil if absent
func (r *StatsRepository) GetByUserAndWord(ctx context.Context, userID, wordID int64) (*models.UserStat, error) {
	var stat models.UserStat
	query := DB.Rebind("SELECT * FROM user_stats WHERE user_id = ? AND word_id = ?")
	err := DB.GetContext(ctx, &stat, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stat: %w", err)
	}
	return &stat, nil
}

// ForUser returns all stat rows for a user keyed by word ID
func (r *StatsRepository) ForUser(ctx context.Context, userID int64) (map[int64]models.UserStat, error) {
	var stats []models.UserStat
	query := DB.Rebind("SELECT * FROM user_stats WHERE user_id = ?")
	err := DB.SelectContext(ctx, &stats, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	byWord := make(map[int64]models.UserStat, len(stats))
	for _, s := range stats {
		byWord[s.WordID] = s
	}
	return byWord, nil
}

// RecordAnswer increments the counters for a (user, word) pair, creating the
// row on first answer. The increment is a single upsert statement, so counters
// stay consistent under concurrent answers for the same pair. Returns the row
// as it stands after the update.
func (r *StatsRepository) RecordAnswer(ctx context.Context, userID, wordID int64, correct bool, now time.Time) (*models.UserStat, error) {
	inc := 0
	if correct {
		inc = 1
	}

	query := DB.Rebind(`
		INSERT INTO user_stats (user_id, word_id, correct_answers, total_answers, last_asked)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(user_id, word_id) DO UPDATE SET
			correct_answers = user_stats.correct_answers + excluded.correct_answers,
			total_answers = user_stats.total_answers + 1,
			last_asked = excluded.last_asked
	`)
	if _, err := DB.ExecContext(ctx, query, userID, wordID, inc, now); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	stat, err := r.GetByUserAndWord(ctx, userID, wordID)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return nil, fmt.Errorf("user stat missing after upsert for user %d word %d", userID, wordID)
	}
	return stat, nil
}

// UpdateMultiplier stores the derived difficulty multiplier for a pair
func (r *StatsRepository) UpdateMultiplier(ctx context.Context, userID, wordID int64, multiplier float64) error {
	query := DB.Rebind("UPDATE user_stats SET difficulty_multiplier = ? WHERE user_id = ? AND word_id = ?")
	if _, err := DB.ExecContext(ctx, query, multiplier, userID, wordID); err != nil {
		return fmt.Errorf("failed to update difficulty multiplier: %w", err)
	}
	return nil
}

// Totals aggregates a user's answers across all words
func (r *StatsRepository) Totals(ctx context.Context, userID int64) (models.UserTotals, error) {
	var totals models.UserTotals
	query := DB.Rebind(`
		SELECT
			COALESCE(SUM(correct_answers), 0) AS total_correct,
			COALESCE(SUM(total_answers), 0) AS total_questions
		FROM user_stats
		WHERE user_id = ?
	`)
	err := DB.GetContext(ctx, &totals, query, userID)
	if err != nil {
		return models.UserTotals{}, fmt.Errorf("failed to get user totals: %w", err)
	}
	return totals, nil
}
