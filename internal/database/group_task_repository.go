package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/greekbot/pkg/models"
)

// GroupTaskRepository handles database operations for group task templates
type GroupTaskRepository struct{}

// NewGroupTaskRepository creates a new repository instance
func NewGroupTaskRepository() *GroupTaskRepository {
	return &GroupTaskRepository{}
}

// Create inserts a new task template
func (r *GroupTaskRepository) Create(ctx context.Context, task *models.GroupTask) error {
	query := DB.Rebind(`
		INSERT INTO group_tasks (task_type, template, target_word_id, correct_answer, created_by)
		VALUES (?, ?, ?, ?, ?)
	`)
	result, err := DB.ExecContext(ctx, query,
		task.TaskType, task.Template, task.TargetWordID, task.CorrectAnswer, task.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create group task: %w", err)
	}
	if DB.DriverName() != "postgres" {
		if id, err := result.LastInsertId(); err == nil {
			task.ID = id
		}
	}
	return nil
}

// RandomByType picks one random template of the given type, or nil when the
// type has no templates
func (r *GroupTaskRepository) RandomByType(ctx context.Context, taskType string) (*models.GroupTask, error) {
	var task models.GroupTask
	query := DB.Rebind("SELECT * FROM group_tasks WHERE task_type = ? ORDER BY RANDOM() LIMIT 1")
	err := DB.GetContext(ctx, &task, query, taskType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random group task: %w", err)
	}
	return &task, nil
}

// GetByType returns all templates of the given type
func (r *GroupTaskRepository) GetByType(ctx context.Context, taskType string) ([]models.GroupTask, error) {
	var tasks []models.GroupTask
	query := DB.Rebind("SELECT * FROM group_tasks WHERE task_type = ? ORDER BY id")
	err := DB.SelectContext(ctx, &tasks, query, taskType)
	if err != nil {
		return nil, fmt.Errorf("failed to get group tasks: %w", err)
	}
	return tasks, nil
}

// Delete removes a task template
func (r *GroupTaskRepository) Delete(ctx context.Context, id int64) error {
	query := DB.Rebind("DELETE FROM group_tasks WHERE id = ?")
	if _, err := DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete group task: %w", err)
	}
	return nil
}
