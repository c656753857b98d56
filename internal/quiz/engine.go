package quiz

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// UserStore is the profile store the engine needs for session bookkeeping
type UserStore interface {
	SessionActive(ctx context.Context, userID int64) (bool, error)
	SetSessionActive(ctx context.Context, userID int64, active bool) error
	// QuestionsPerSession returns the user's session length preference;
	// zero means no limit
	QuestionsPerSession(ctx context.Context, userID int64) (int, error)
}

// AnswerResult is what the user sees after answering a question
type AnswerResult struct {
	Correct       bool
	CorrectOption string
	Totals        models.UserTotals
	// Next is the auto-advanced question in session mode, nil otherwise
	Next *Question
	// SessionEnded is set when the session finished: the user's question
	// limit was reached, or the next composition failed
	SessionEnded bool
}

// SessionSummary reports a finished session's tally plus lifetime totals
type SessionSummary struct {
	Asked   int
	Correct int
	Totals  models.UserTotals
}

// pendingQuestion is the one outstanding question held for a user
type pendingQuestion struct {
	question  *Question
	inSession bool
	limit     int
	asked     int
	correct   int
}

// Engine owns the per-user question state machine: it composes questions,
// holds the single outstanding question per user, checks answers and feeds
// results back into the accuracy store. Only the most recently issued
// question is honored.
type Engine struct {
	composer   *Composer
	stats      StatStore
	users      UserStore
	difficulty Difficulty
	now        func() time.Time

	mu      sync.Mutex
	pending map[int64]*pendingQuestion
}

// NewEngine validates the difficulty tuning and wires the engine together
func NewEngine(words WordStore, stats StatStore, users UserStore, difficulty Difficulty) (*Engine, error) {
	if err := difficulty.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		composer:   NewComposer(words, stats, difficulty),
		stats:      stats,
		users:      users,
		difficulty: difficulty,
		now:        time.Now,
		pending:    make(map[int64]*pendingQuestion),
	}, nil
}

// RequestQuiz composes a single question for the user and holds it for answer
// checking. Any previously held question is invalidated; a running session
// keeps its tally and continues with the new question.
func (e *Engine) RequestQuiz(ctx context.Context, userID int64) (*Question, error) {
	q, err := e.composer.Compose(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pending[userID]; ok {
		p.question = q
	} else {
		e.pending[userID] = &pendingQuestion{question: q}
	}
	return q, nil
}

// RequestAutoQuiz composes a question for scheduled delivery. Unlike
// RequestQuiz it never replaces a held question: when the user picked one up
// between the scheduler's due check and this call, the composed question is
// discarded and ErrQuestionPending returned.
func (e *Engine) RequestAutoQuiz(ctx context.Context, userID int64) (*Question, error) {
	q, err := e.composer.Compose(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pending[userID]; ok {
		return nil, ErrQuestionPending
	}
	e.pending[userID] = &pendingQuestion{question: q}
	return q, nil
}

// StartSession begins a continuous quiz session and returns its first
// question. At most one session per user: a second start fails with
// ErrSessionConflict and leaves the held question untouched.
func (e *Engine) StartSession(ctx context.Context, userID int64) (*Question, error) {
	active, err := e.users.SessionActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrSessionConflict
	}

	limit, err := e.users.QuestionsPerSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	q, err := e.composer.Compose(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := e.users.SetSessionActive(ctx, userID, true); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.pending[userID] = &pendingQuestion{question: q, inSession: true, limit: limit}
	e.mu.Unlock()
	return q, nil
}

// StopSession ends the user's session, drops any held question and reports
// the session tally. Stopping without a session is harmless.
func (e *Engine) StopSession(ctx context.Context, userID int64) (*SessionSummary, error) {
	if err := e.users.SetSessionActive(ctx, userID, false); err != nil {
		return nil, err
	}

	e.mu.Lock()
	summary := &SessionSummary{}
	if p, ok := e.pending[userID]; ok {
		summary.Asked = p.asked
		summary.Correct = p.correct
		delete(e.pending, userID)
	}
	e.mu.Unlock()

	totals, err := e.stats.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.Totals = totals
	return summary, nil
}

// SubmitAnswer checks the submitted option against the held question and
// records the outcome. The accuracy write happens before any state advance:
// when it fails the held question stays in place and the user can answer
// again. In session mode the next question is composed immediately; reaching
// the user's question limit or failing the next composition ends the session.
func (e *Engine) SubmitAnswer(ctx context.Context, userID int64, optionIndex int) (*AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.pending[userID]
	if !ok {
		return nil, ErrStaleQuestion
	}
	q := p.question
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return nil, ErrInvalidOption
	}

	correct := optionIndex == q.CorrectIndex

	stat, err := e.stats.RecordAnswer(ctx, userID, q.WordID, correct, e.now())
	if err != nil {
		return nil, err
	}

	// Derived column, not worth failing the answer over
	multiplier := e.difficulty.Weight(stat.CorrectAnswers, stat.TotalAnswers)
	if err := e.stats.UpdateMultiplier(ctx, userID, q.WordID, multiplier); err != nil {
		log.Printf("Error updating difficulty multiplier for user %d word %d: %v", userID, q.WordID, err)
	}

	result := &AnswerResult{
		Correct:       correct,
		CorrectOption: q.Options[q.CorrectIndex],
	}
	if totals, err := e.stats.Totals(ctx, userID); err == nil {
		result.Totals = totals
	} else {
		log.Printf("Error loading totals for user %d: %v", userID, err)
	}

	if !p.inSession {
		delete(e.pending, userID)
		return result, nil
	}

	p.asked++
	if correct {
		p.correct++
	}

	if p.limit > 0 && p.asked >= p.limit {
		if err := e.users.SetSessionActive(ctx, userID, false); err != nil {
			log.Printf("Error clearing session flag for user %d: %v", userID, err)
		}
		delete(e.pending, userID)
		result.SessionEnded = true
		return result, nil
	}

	next, err := e.composer.Compose(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrInsufficientVocabulary) {
			log.Printf("Error composing next session question for user %d: %v", userID, err)
		}
		if err := e.users.SetSessionActive(ctx, userID, false); err != nil {
			log.Printf("Error clearing session flag for user %d: %v", userID, err)
		}
		delete(e.pending, userID)
		result.SessionEnded = true
		return result, nil
	}

	p.question = next
	result.Next = next
	return result, nil
}

// Abandon drops a held single question that was never answered, e.g. when the
// transport failed to deliver it. Session questions are kept; sessions end
// through StopSession.
func (e *Engine) Abandon(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pending[userID]; ok && !p.inSession {
		delete(e.pending, userID)
	}
}

// HasPending reports whether the user currently holds an unanswered question.
// The scheduler uses this to keep auto deliveries away from live questions.
func (e *Engine) HasPending(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pending[userID]
	return ok
}
