package models

import (
	"database/sql"
	"time"
)

// Task types a group context can be scheduled for
const (
	TaskTypeConjugation = "conjugation"
	TaskTypeTranslation = "translation"
	TaskTypeVocabulary  = "vocabulary"
	TaskTypeCustom      = "custom"
)

// ChatContext represents a group chat (optionally a forum topic) that
// receives scheduled practice tasks
type ChatContext struct {
	ID                      int64          `json:"id" db:"id"`
	ChatID                  int64          `json:"chat_id" db:"chat_id"`
	ChatType                string         `json:"chat_type" db:"chat_type"`
	TopicID                 sql.NullInt64  `json:"topic_id" db:"topic_id"`
	Enabled                 bool           `json:"enabled" db:"enabled"`
	TaskType                sql.NullString `json:"task_type" db:"task_type"`
	ScheduleIntervalMinutes int            `json:"schedule_interval_minutes" db:"schedule_interval_minutes"`
	LastPosted              sql.NullTime   `json:"last_posted" db:"last_posted"`
	CreatedAt               time.Time      `json:"created_at" db:"created_at"`
}

// PostDue reports whether the context's posting interval has elapsed at now
func (c *ChatContext) PostDue(now time.Time) bool {
	if !c.LastPosted.Valid {
		return true
	}
	interval := time.Duration(c.ScheduleIntervalMinutes) * time.Minute
	return now.Sub(c.LastPosted.Time) >= interval
}
