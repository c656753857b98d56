package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. When DATABASE_URL is set
// a PostgreSQL connection is used, otherwise a local SQLite file.
func Connect() error {
	var db *sqlx.DB
	var err error

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
	} else {
		// Create data directory if it doesn't exist
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}

		dbPath := filepath.Join(dataDir, "greekbot.db")
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db

	// Initialize schema
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	for _, table := range schemaTables(DB.DriverName()) {
		if _, err := DB.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %v", table.name, err)
		}
	}
	return nil
}

type schemaTable struct {
	name string
	ddl  string
}

// schemaTables renders the DDL for the active driver. The dialects disagree on
// autoincrement keys, 64-bit integer columns and boolean literals.
func schemaTables(driver string) []schemaTable {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	bigint := "INTEGER"
	boolTrue, boolFalse := "1", "0"
	if driver == "postgres" {
		pk = "BIGSERIAL PRIMARY KEY"
		bigint = "BIGINT"
		boolTrue, boolFalse = "true", "false"
	}

	return []schemaTable{
		{"words", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS words (
				id %s,
				greek TEXT NOT NULL,
				russian TEXT NOT NULL,
				word_type TEXT NOT NULL CHECK(word_type IN ('noun', 'verb', 'adjective', 'adverb', 'pronoun', 'preposition', 'conjunction', 'phrase')),
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				created_by %s DEFAULT 0
			)
		`, pk, bigint)},
		{"users", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				user_id %s PRIMARY KEY,
				username TEXT DEFAULT '',
				first_name TEXT DEFAULT '',
				quiz_session_active BOOLEAN DEFAULT %s,
				auto_quiz_enabled BOOLEAN DEFAULT %s,
				questions_per_session INTEGER DEFAULT 5,
				session_interval_minutes INTEGER DEFAULT 15,
				last_auto_quiz TIMESTAMP,
				joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, bigint, boolFalse, boolTrue)},
		{"user_stats", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS user_stats (
				id %s,
				user_id %s NOT NULL,
				word_id %s NOT NULL,
				correct_answers INTEGER DEFAULT 0,
				total_answers INTEGER DEFAULT 0,
				last_asked TIMESTAMP,
				difficulty_multiplier REAL DEFAULT 1.0,
				FOREIGN KEY (user_id) REFERENCES users(user_id),
				FOREIGN KEY (word_id) REFERENCES words(id),
				UNIQUE(user_id, word_id)
			)
		`, pk, bigint, bigint)},
		{"chat_contexts", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chat_contexts (
				id %s,
				chat_id %s NOT NULL,
				chat_type TEXT NOT NULL CHECK(chat_type IN ('private', 'group', 'supergroup')),
				topic_id %s,
				enabled BOOLEAN DEFAULT %s,
				task_type TEXT CHECK(task_type IN ('conjugation', 'translation', 'vocabulary', 'custom')),
				schedule_interval_minutes INTEGER DEFAULT 30,
				last_posted TIMESTAMP,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(chat_id, topic_id)
			)
		`, pk, bigint, bigint, boolTrue)},
		{"group_tasks", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS group_tasks (
				id %s,
				task_type TEXT NOT NULL,
				template TEXT NOT NULL,
				target_word_id %s,
				correct_answer TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				created_by %s DEFAULT 0,
				FOREIGN KEY (target_word_id) REFERENCES words(id)
			)
		`, pk, bigint, bigint)},
		{"admins", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS admins (
				user_id %s PRIMARY KEY,
				username TEXT NOT NULL,
				added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, bigint)},
	}
}
