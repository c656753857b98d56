package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greekbot/pkg/models"
)

// newTestDB points the package at a fresh in-memory database
func newTestDB(t *testing.T) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection, otherwise every pool connection sees its own empty DB
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
		DB = nil
	})
	DB = db
	require.NoError(t, initializeSchema())
}

func mustCreateWord(t *testing.T, greek, russian string, wordType models.WordType) *models.Word {
	t.Helper()
	word := &models.Word{Greek: greek, Russian: russian, WordType: wordType}
	require.NoError(t, NewWordRepository().Create(context.Background(), word))
	return word
}

// The rendered DDL must be valid for both dialects: no SQLite autoincrement
// syntax or numeric boolean literals on the postgres side
func TestSchemaTablesPostgresDialect(t *testing.T) {
	for _, table := range schemaTables("postgres") {
		assert.NotContains(t, table.ddl, "AUTOINCREMENT", "table %s", table.name)
		assert.NotContains(t, table.ddl, "BOOLEAN DEFAULT 1", "table %s", table.name)
		assert.NotContains(t, table.ddl, "BOOLEAN DEFAULT 0", "table %s", table.name)
	}

	var ids, booleans int
	for _, table := range schemaTables("postgres") {
		ids += strings.Count(table.ddl, "BIGSERIAL PRIMARY KEY") + strings.Count(table.ddl, "BIGINT PRIMARY KEY")
		booleans += strings.Count(table.ddl, "BOOLEAN DEFAULT true") + strings.Count(table.ddl, "BOOLEAN DEFAULT false")
	}
	assert.Equal(t, 6, ids, "every table needs a 64-bit key")
	assert.Equal(t, 3, booleans)

	// Both dialects declare the same tables
	require.Len(t, schemaTables("sqlite3"), len(schemaTables("postgres")))
}

func TestDistractorsSampling(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()

	quizzed := mustCreateWord(t, "νερό", "вода", models.WordTypeNoun)
	mustCreateWord(t, "σπίτι", "дом", models.WordTypeNoun)
	mustCreateWord(t, "ψωμί", "хлеб", models.WordTypeNoun)
	mustCreateWord(t, "γάλα", "молоко", models.WordTypeNoun)
	mustCreateWord(t, "κάνω", "делать", models.WordTypeVerb)

	texts, err := NewWordRepository().Distractors(ctx, models.WordTypeNoun, quizzed.ID, "russian", 3)
	require.NoError(t, err)
	require.Len(t, texts, 3)

	seen := make(map[string]bool)
	for _, text := range texts {
		assert.NotEqual(t, "вода", text, "quizzed word must be excluded")
		assert.NotEqual(t, "делать", text, "other word types must be excluded")
		assert.False(t, seen[text], "duplicate distractor %q", text)
		seen[text] = true
	}
}

func TestRecordAnswerUpsert(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	word := mustCreateWord(t, "νερό", "вода", models.WordTypeNoun)
	stats := NewStatsRepository()

	stat, err := stats.RecordAnswer(ctx, 1, word.ID, true, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stat.CorrectAnswers)
	assert.Equal(t, 1, stat.TotalAnswers)

	stat, err = stats.RecordAnswer(ctx, 1, word.ID, false, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, stat.CorrectAnswers)
	assert.Equal(t, 2, stat.TotalAnswers)

	totals, err := stats.Totals(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.TotalCorrect)
	assert.Equal(t, 2, totals.TotalQuestions)
}

// Re-enabling a plain group chat must update its row, not add another one:
// NULL topic IDs never conflict under the unique index
func TestChatContextUpsertWithoutTopic(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	contexts := NewChatContextRepository()

	first := &models.ChatContext{
		ChatID:                  -500,
		ChatType:                "group",
		Enabled:                 true,
		TaskType:                sql.NullString{String: models.TaskTypeVocabulary, Valid: true},
		ScheduleIntervalMinutes: 30,
	}
	require.NoError(t, contexts.Upsert(ctx, first))

	second := &models.ChatContext{
		ChatID:                  -500,
		ChatType:                "group",
		Enabled:                 true,
		TaskType:                sql.NullString{String: models.TaskTypeTranslation, Valid: true},
		ScheduleIntervalMinutes: 60,
	}
	require.NoError(t, contexts.Upsert(ctx, second))

	enabled, err := contexts.EnabledContexts(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, models.TaskTypeTranslation, enabled[0].TaskType.String)
	assert.Equal(t, 60, enabled[0].ScheduleIntervalMinutes)
}
