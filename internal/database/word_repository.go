package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/greekbot/pkg/models"
)

// WordRepository handles database operations for vocabulary words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetAll returns all words
func (r *WordRepository) GetAll(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return words, nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := DB.Rebind("SELECT * FROM words WHERE id = ?")
	err := DB.GetContext(ctx, &word, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// Distractors samples up to count distinct texts of the given language column
// from words of the same type, excluding the given word. The result may be
// shorter than count when the pool is too small; callers decide what that means.
func (r *WordRepository) Distractors(ctx context.Context, wordType models.WordType, excludeID int64, lang string, count int) ([]string, error) {
	var column string
	switch lang {
	case "greek":
		column = "greek"
	case "russian":
		column = "russian"
	default:
		return nil, fmt.Errorf("unknown language column: %s", lang)
	}

	// Postgres refuses ORDER BY RANDOM() combined with DISTINCT, so the
	// deduplication happens in a subquery.
	query := DB.Rebind(fmt.Sprintf(`
		SELECT %[1]s FROM (
			SELECT DISTINCT %[1]s FROM words
			WHERE id != ? AND word_type = ?
		) candidates
		ORDER BY RANDOM()
		LIMIT ?
	`, column))

	var texts []string
	err := DB.SelectContext(ctx, &texts, query, excludeID, wordType, count)
	if err != nil {
		return nil, fmt.Errorf("failed to sample distractors: %w", err)
	}
	return texts, nil
}

// Create inserts a new word
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO words (greek, russian, word_type, created_by)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		return DB.QueryRowContext(ctx, query,
			word.Greek, word.Russian, word.WordType, word.CreatedBy,
		).Scan(&word.ID, &word.CreatedAt)
	}

	// SQLite path, no RETURNING
	result, err := DB.ExecContext(ctx,
		"INSERT INTO words (greek, russian, word_type, created_by) VALUES (?, ?, ?, ?)",
		word.Greek, word.Russian, word.WordType, word.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	word.ID = id
	return nil
}

// Update modifies an existing word
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	query := DB.Rebind("UPDATE words SET greek = ?, russian = ?, word_type = ? WHERE id = ?")
	_, err := DB.ExecContext(ctx, query, word.Greek, word.Russian, word.WordType, word.ID)
	if err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	return nil
}

// Delete removes a word
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	query := DB.Rebind("DELETE FROM words WHERE id = ?")
	if _, err := DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// ExistsByGreek reports whether a word with the same greek text and type exists
func (r *WordRepository) ExistsByGreek(ctx context.Context, greek string, wordType models.WordType) (bool, error) {
	var id int64
	query := DB.Rebind("SELECT id FROM words WHERE greek = ? AND word_type = ?")
	err := DB.GetContext(ctx, &id, query, greek, wordType)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up word: %w", err)
	}
	return true, nil
}

// CountByType returns the number of words in a category
func (r *WordRepository) CountByType(ctx context.Context, wordType models.WordType) (int, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM words WHERE word_type = ?")
	err := DB.GetContext(ctx, &count, query, wordType)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}
