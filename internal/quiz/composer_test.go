package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/example/greekbot/pkg/models"
)

func newTestComposer(words []models.Word, stats *fakeStatStore) *Composer {
	if stats == nil {
		stats = newFakeStatStore()
	}
	return NewComposer(&fakeWordStore{words: words}, stats, DefaultDifficulty())
}

// Answering with the recorded correct index must always hit the right
// translation, whatever the shuffle did
func TestComposeRoundTrip(t *testing.T) {
	words := nouns(6)
	c := newTestComposer(words, nil)
	ctx := context.Background()

	byID := make(map[int64]models.Word)
	for _, w := range words {
		byID[w.ID] = w
	}

	for i := 0; i < 50; i++ {
		q, err := c.Compose(ctx, 1)
		if err != nil {
			t.Fatalf("compose %d: %v", i, err)
		}

		if len(q.Options) != OptionCount {
			t.Fatalf("got %d options, want %d", len(q.Options), OptionCount)
		}

		word := byID[q.WordID]
		wantPrompt, wantCorrect := word.Greek, word.Russian
		if q.Direction == RussianToGreek {
			wantPrompt, wantCorrect = word.Russian, word.Greek
		}

		if q.Prompt != wantPrompt {
			t.Fatalf("prompt = %q, want %q", q.Prompt, wantPrompt)
		}
		if got := q.Options[q.CorrectIndex]; got != wantCorrect {
			t.Fatalf("options[correct] = %q, want %q", got, wantCorrect)
		}
	}
}

func TestComposeOptionsAreDistinct(t *testing.T) {
	c := newTestComposer(nouns(8), nil)

	for i := 0; i < 30; i++ {
		q, err := c.Compose(context.Background(), 1)
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		seen := make(map[string]bool)
		for _, opt := range q.Options {
			if seen[opt] {
				t.Fatalf("duplicate option %q in %v", opt, q.Options)
			}
			seen[opt] = true
		}
	}
}

// With exactly four nouns the distractor pool for any word is exactly the
// other three
func TestComposeFourNounPool(t *testing.T) {
	words := nouns(4)
	c := newTestComposer(words, nil)

	for i := 0; i < 30; i++ {
		q, err := c.Compose(context.Background(), 1)
		if err != nil {
			t.Fatalf("compose: %v", err)
		}

		want := make(map[string]bool, len(words))
		for _, w := range words {
			if q.Direction == GreekToRussian {
				want[w.Russian] = true
			} else {
				want[w.Greek] = true
			}
		}
		for _, opt := range q.Options {
			if !want[opt] {
				t.Fatalf("option %q not drawn from the four-word pool", opt)
			}
			delete(want, opt)
		}
		if len(want) != 0 {
			t.Fatalf("pool words missing from options: %v", want)
		}
	}
}

// Reversed direction must pull distractors from the greek column, never reuse
// the russian ones
func TestComposeDirectionFields(t *testing.T) {
	words := nouns(6)
	c := newTestComposer(words, nil)

	greek := make(map[string]bool)
	russian := make(map[string]bool)
	for _, w := range words {
		greek[w.Greek] = true
		russian[w.Russian] = true
	}

	sawGR, sawRU := false, false
	for i := 0; i < 100 && !(sawGR && sawRU); i++ {
		q, err := c.Compose(context.Background(), 1)
		if err != nil {
			t.Fatalf("compose: %v", err)
		}

		pool := russian
		if q.Direction == RussianToGreek {
			pool = greek
			sawRU = true
		} else {
			sawGR = true
		}
		for _, opt := range q.Options {
			if !pool[opt] {
				t.Fatalf("direction %s option %q from wrong language column", q.Direction, opt)
			}
		}
	}
	if !sawGR || !sawRU {
		t.Fatal("both directions should appear over 100 compositions")
	}
}

func TestComposeInsufficientVocabulary(t *testing.T) {
	// Three nouns leave only two distractors, never enough
	c := newTestComposer(nouns(3), nil)
	if _, err := c.Compose(context.Background(), 1); !errors.Is(err, ErrInsufficientVocabulary) {
		t.Fatalf("got %v, want ErrInsufficientVocabulary", err)
	}

	c = newTestComposer(nil, nil)
	if _, err := c.Compose(context.Background(), 1); !errors.Is(err, ErrInsufficientVocabulary) {
		t.Fatalf("empty vocabulary: got %v, want ErrInsufficientVocabulary", err)
	}
}

// Struggled-with words must be drawn noticeably more often than mastered ones
func TestWeightedPickBias(t *testing.T) {
	words := nouns(10)
	stats := newFakeStatStore()
	c := newTestComposer(words, stats)
	c.rnd = rand.New(rand.NewSource(42))

	statMap := map[int64]models.UserStat{
		// Word 1: 2/10, weight 2.0
		1: {UserID: 1, WordID: 1, CorrectAnswers: 2, TotalAnswers: 10},
		// Word 2: 9/10, weight 0.5
		2: {UserID: 1, WordID: 2, CorrectAnswers: 9, TotalAnswers: 10},
	}

	counts := make(map[int64]int)
	for i := 0; i < 5000; i++ {
		w := c.pickWeighted(words, statMap)
		counts[w.ID]++
	}

	if counts[1] <= counts[2] {
		t.Fatalf("hard word picked %d times, mastered word %d times; expected a strong bias",
			counts[1], counts[2])
	}
	// All words must remain reachable
	for _, w := range words {
		if counts[w.ID] == 0 {
			t.Fatalf("word %d never picked; weighting must not exclude words", w.ID)
		}
	}
}
