package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/greekbot/pkg/models"
)

var errStoreDown = errors.New("store unavailable")

// fakeWordStore serves a fixed word list
type fakeWordStore struct {
	words   []models.Word
	failAll bool
}

func (f *fakeWordStore) GetAll(ctx context.Context) ([]models.Word, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	return append([]models.Word(nil), f.words...), nil
}

func (f *fakeWordStore) Distractors(ctx context.Context, wordType models.WordType, excludeID int64, lang string, count int) ([]string, error) {
	seen := make(map[string]bool)
	var texts []string
	for _, w := range f.words {
		if w.ID == excludeID || w.WordType != wordType {
			continue
		}
		text := w.Greek
		if lang == langRussian {
			text = w.Russian
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		texts = append(texts, text)
		if len(texts) == count {
			break
		}
	}
	return texts, nil
}

// fakeStatStore keeps accuracy counters in memory with per-store locking,
// mirroring the single-writer discipline of the SQL upsert
type fakeStatStore struct {
	mu         sync.Mutex
	stats      map[string]*models.UserStat
	failRecord bool
}

func newFakeStatStore() *fakeStatStore {
	return &fakeStatStore{stats: make(map[string]*models.UserStat)}
}

func statKey(userID, wordID int64) string {
	return fmt.Sprintf("%d:%d", userID, wordID)
}

func (f *fakeStatStore) ForUser(ctx context.Context, userID int64) (map[int64]models.UserStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byWord := make(map[int64]models.UserStat)
	for _, s := range f.stats {
		if s.UserID == userID {
			byWord[s.WordID] = *s
		}
	}
	return byWord, nil
}

func (f *fakeStatStore) RecordAnswer(ctx context.Context, userID, wordID int64, correct bool, now time.Time) (*models.UserStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRecord {
		return nil, errStoreDown
	}

	key := statKey(userID, wordID)
	stat, ok := f.stats[key]
	if !ok {
		stat = &models.UserStat{UserID: userID, WordID: wordID, DifficultyMultiplier: 1.0}
		f.stats[key] = stat
	}
	stat.TotalAnswers++
	if correct {
		stat.CorrectAnswers++
	}
	copied := *stat
	return &copied, nil
}

func (f *fakeStatStore) UpdateMultiplier(ctx context.Context, userID, wordID int64, multiplier float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stat, ok := f.stats[statKey(userID, wordID)]; ok {
		stat.DifficultyMultiplier = multiplier
	}
	return nil
}

func (f *fakeStatStore) Totals(ctx context.Context, userID int64) (models.UserTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var totals models.UserTotals
	for _, s := range f.stats {
		if s.UserID == userID {
			totals.TotalCorrect += s.CorrectAnswers
			totals.TotalQuestions += s.TotalAnswers
		}
	}
	return totals, nil
}

func (f *fakeStatStore) get(userID, wordID int64) models.UserStat {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stat, ok := f.stats[statKey(userID, wordID)]; ok {
		return *stat
	}
	return models.UserStat{}
}

// fakeUserStore keeps session flags and length preferences in memory. A user
// without a stored preference has no session limit.
type fakeUserStore struct {
	mu      sync.Mutex
	active  map[int64]bool
	limits  map[int64]int
	failSet bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		active: make(map[int64]bool),
		limits: make(map[int64]int),
	}
}

func (f *fakeUserStore) SessionActive(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[userID], nil
}

func (f *fakeUserStore) SetSessionActive(ctx context.Context, userID int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errStoreDown
	}
	f.active[userID] = active
	return nil
}

func (f *fakeUserStore) QuestionsPerSession(ctx context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limits[userID], nil
}

// nouns builds n noun words with distinct texts
func nouns(n int) []models.Word {
	words := make([]models.Word, n)
	for i := range words {
		words[i] = models.Word{
			ID:       int64(i + 1),
			Greek:    fmt.Sprintf("λέξη%d", i+1),
			Russian:  fmt.Sprintf("слово%d", i+1),
			WordType: models.WordTypeNoun,
		}
	}
	return words
}
