package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// ChatContextRepository handles database operations for group contexts
type ChatContextRepository struct{}

// NewChatContextRepository creates a new repository instance
func NewChatContextRepository() *ChatContextRepository {
	return &ChatContextRepository{}
}

// Upsert creates or replaces the configuration for a (chat, topic) pair.
// NULL topic IDs never collide in a unique index, so the lookup is explicit.
func (r *ChatContextRepository) Upsert(ctx context.Context, c *models.ChatContext) error {
	existing, err := r.GetByChatAndTopic(ctx, c.ChatID, c.TopicID)
	if err != nil {
		return err
	}

	if existing == nil {
		query := DB.Rebind(`
			INSERT INTO chat_contexts (chat_id, chat_type, topic_id, enabled, task_type, schedule_interval_minutes)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		_, err = DB.ExecContext(ctx, query,
			c.ChatID, c.ChatType, c.TopicID, c.Enabled, c.TaskType, c.ScheduleIntervalMinutes)
		if err != nil {
			return fmt.Errorf("failed to create chat context: %w", err)
		}
		return nil
	}

	query := DB.Rebind(`
		UPDATE chat_contexts
		SET enabled = ?, task_type = ?, schedule_interval_minutes = ?
		WHERE id = ?
	`)
	_, err = DB.ExecContext(ctx, query, c.Enabled, c.TaskType, c.ScheduleIntervalMinutes, existing.ID)
	if err != nil {
		return fmt.Errorf("failed to update chat context: %w", err)
	}
	c.ID = existing.ID
	return nil
}

// GetByChatAndTopic returns the context for a (chat, topic) pair, or nil
func (r *ChatContextRepository) GetByChatAndTopic(ctx context.Context, chatID int64, topicID sql.NullInt64) (*models.ChatContext, error) {
	var c models.ChatContext
	var err error
	if topicID.Valid {
		query := DB.Rebind("SELECT * FROM chat_contexts WHERE chat_id = ? AND topic_id = ?")
		err = DB.GetContext(ctx, &c, query, chatID, topicID.Int64)
	} else {
		query := DB.Rebind("SELECT * FROM chat_contexts WHERE chat_id = ? AND topic_id IS NULL")
		err = DB.GetContext(ctx, &c, query, chatID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat context: %w", err)
	}
	return &c, nil
}

// SetEnabled toggles scheduled posting for a (chat, topic) pair
func (r *ChatContextRepository) SetEnabled(ctx context.Context, chatID int64, topicID sql.NullInt64, enabled bool) error {
	var err error
	if topicID.Valid {
		query := DB.Rebind("UPDATE chat_contexts SET enabled = ? WHERE chat_id = ? AND topic_id = ?")
		_, err = DB.ExecContext(ctx, query, enabled, chatID, topicID.Int64)
	} else {
		query := DB.Rebind("UPDATE chat_contexts SET enabled = ? WHERE chat_id = ? AND topic_id IS NULL")
		_, err = DB.ExecContext(ctx, query, enabled, chatID)
	}
	if err != nil {
		return fmt.Errorf("failed to toggle chat context: %w", err)
	}
	return nil
}

// EnabledContexts returns all contexts with scheduled posting enabled.
// Interval filtering happens in the scheduler.
func (r *ChatContextRepository) EnabledContexts(ctx context.Context) ([]models.ChatContext, error) {
	var contexts []models.ChatContext
	query := "SELECT * FROM chat_contexts WHERE enabled = true"
	if DB.DriverName() != "postgres" {
		query = "SELECT * FROM chat_contexts WHERE enabled = 1"
	}
	err := DB.SelectContext(ctx, &contexts, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled chat contexts: %w", err)
	}
	return contexts, nil
}

// TouchPosted records a successful task post time for a context
func (r *ChatContextRepository) TouchPosted(ctx context.Context, id int64, now time.Time) error {
	query := DB.Rebind("UPDATE chat_contexts SET last_posted = ? WHERE id = ?")
	if _, err := DB.ExecContext(ctx, query, now, id); err != nil {
		return fmt.Errorf("failed to update last posted time: %w", err)
	}
	return nil
}
