package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AdminRepository handles the admin whitelist table
type AdminRepository struct{}

// NewAdminRepository creates a new repository instance
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{}
}

// IsAdmin reports whether a user is on the whitelist
func (r *AdminRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var id int64
	query := DB.Rebind("SELECT user_id FROM admins WHERE user_id = ?")
	err := DB.GetContext(ctx, &id, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return true, nil
}

// Add puts a user on the whitelist
func (r *AdminRepository) Add(ctx context.Context, userID int64, username string) error {
	query := DB.Rebind(`
		INSERT INTO admins (user_id, username)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username
	`)
	if _, err := DB.ExecContext(ctx, query, userID, username); err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

// Remove takes a user off the whitelist
func (r *AdminRepository) Remove(ctx context.Context, userID int64) error {
	query := DB.Rebind("DELETE FROM admins WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	return nil
}
