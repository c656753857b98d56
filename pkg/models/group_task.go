package models

import (
	"database/sql"
	"strings"
	"time"
)

// WordSlot is the substitution slot in a group task template
const WordSlot = "{word}"

// GroupTask is a reusable practice task template for group contexts
type GroupTask struct {
	ID            int64          `json:"id" db:"id"`
	TaskType      string         `json:"task_type" db:"task_type"`
	Template      string         `json:"template" db:"template"`
	TargetWordID  sql.NullInt64  `json:"target_word_id" db:"target_word_id"`
	CorrectAnswer sql.NullString `json:"correct_answer" db:"correct_answer"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	CreatedBy     int64          `json:"created_by" db:"created_by"`
}

// Render substitutes the target word's text into the template slot
func (t *GroupTask) Render(wordText string) string {
	return strings.ReplaceAll(t.Template, WordSlot, wordText)
}
