package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// Direction tells which language the prompt is shown in
type Direction string

const (
	GreekToRussian Direction = "GR→RU"
	RussianToGreek Direction = "RU→GR"
)

// Language columns distractors are sampled from
const (
	langGreek   = "greek"
	langRussian = "russian"
)

// OptionCount is the number of answer options in every question
const OptionCount = 4

// Question is a fully composed multiple-choice question. It is the single
// source of truth for answer checking: correctness is decided by comparing the
// submitted index against CorrectIndex, never by going back to the store.
type Question struct {
	WordID       int64
	WordType     models.WordType
	Direction    Direction
	Prompt       string
	Options      []string
	CorrectIndex int
}

// WordStore is the vocabulary lookup the composer needs
type WordStore interface {
	GetAll(ctx context.Context) ([]models.Word, error)
	Distractors(ctx context.Context, wordType models.WordType, excludeID int64, lang string, count int) ([]string, error)
}

// StatStore is the per-(user, word) accuracy store
type StatStore interface {
	ForUser(ctx context.Context, userID int64) (map[int64]models.UserStat, error)
	RecordAnswer(ctx context.Context, userID, wordID int64, correct bool, now time.Time) (*models.UserStat, error)
	UpdateMultiplier(ctx context.Context, userID, wordID int64, multiplier float64) error
	Totals(ctx context.Context, userID int64) (models.UserTotals, error)
}

// Composer assembles questions: difficulty-weighted word selection, direction
// flip, distractor sampling and option shuffling
type Composer struct {
	words      WordStore
	stats      StatStore
	difficulty Difficulty

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewComposer creates a composer with its own random source
func NewComposer(words WordStore, stats StatStore, difficulty Difficulty) *Composer {
	return &Composer{
		words:      words,
		stats:      stats,
		difficulty: difficulty,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Compose builds one question for the user, or ErrInsufficientVocabulary when
// the word pool cannot fill four distinct options
func (c *Composer) Compose(ctx context.Context, userID int64) (*Question, error) {
	words, err := c.words.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrInsufficientVocabulary
	}

	stats, err := c.stats.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user stats: %w", err)
	}

	word := c.pickWeighted(words, stats)

	direction := GreekToRussian
	if c.coinFlip() {
		direction = RussianToGreek
	}

	var prompt, correct, answerLang string
	if direction == GreekToRussian {
		prompt, correct, answerLang = word.Greek, word.Russian, langRussian
	} else {
		prompt, correct, answerLang = word.Russian, word.Greek, langGreek
	}

	distractors, err := c.distractorsFor(ctx, &word, answerLang, correct, OptionCount-1)
	if err != nil {
		return nil, err
	}

	options := append([]string{correct}, distractors...)
	correctIndex := c.shuffleOptions(options, 0)

	return &Question{
		WordID:       word.ID,
		WordType:     word.WordType,
		Direction:    direction,
		Prompt:       prompt,
		Options:      options,
		CorrectIndex: correctIndex,
	}, nil
}

// distractorsFor samples count distinct wrong options in the answer language,
// never including the correct text. A pool too small to fill count distinct
// values fails the composition instead of padding.
func (c *Composer) distractorsFor(ctx context.Context, word *models.Word, lang, correct string, count int) ([]string, error) {
	// Ask for one extra in case the pool contains a different word with the
	// same text as the correct answer.
	pool, err := c.words.Distractors(ctx, word.WordType, word.ID, lang, count+1)
	if err != nil {
		return nil, fmt.Errorf("sampling distractors: %w", err)
	}

	distractors := make([]string, 0, count)
	for _, text := range pool {
		if text == correct {
			continue
		}
		distractors = append(distractors, text)
		if len(distractors) == count {
			break
		}
	}

	if len(distractors) < count {
		return nil, ErrInsufficientVocabulary
	}
	return distractors, nil
}

// pickWeighted draws one word with probability proportional to its difficulty
// weight. Words with no recorded answers sit at normal weight, so a fresh user
// gets a uniform draw.
func (c *Composer) pickWeighted(words []models.Word, stats map[int64]models.UserStat) models.Word {
	cumulative := make([]float64, len(words))
	total := 0.0
	for i, w := range words {
		weight := c.difficulty.NormalWeight
		if stat, ok := stats[w.ID]; ok {
			weight = c.difficulty.Weight(stat.CorrectAnswers, stat.TotalAnswers)
		}
		total += weight
		cumulative[i] = total
	}

	c.mu.Lock()
	r := c.rnd.Float64() * total
	c.mu.Unlock()

	for i, bound := range cumulative {
		if r < bound {
			return words[i]
		}
	}
	// Float rounding can leave r == total
	return words[len(words)-1]
}

func (c *Composer) coinFlip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Intn(2) == 1
}

// shuffleOptions permutes options uniformly and returns the new index of the
// element that started at correctIndex
func (c *Composer) shuffleOptions(options []string, correctIndex int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})
	return correctIndex
}
