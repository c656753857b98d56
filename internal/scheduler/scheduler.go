package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/greekbot/internal/quiz"
	"github.com/example/greekbot/pkg/models"
)

// Notifier delivers scheduled output to the transport
type Notifier interface {
	SendQuiz(userID int64, q *quiz.Question) error
	SendGroupTask(chatContext models.ChatContext, text string) error
}

// QuizSource composes and tracks questions for auto delivery
type QuizSource interface {
	RequestAutoQuiz(ctx context.Context, userID int64) (*quiz.Question, error)
	Abandon(userID int64)
	HasPending(userID int64) bool
}

// UserSource lists auto-quiz candidates and records deliveries
type UserSource interface {
	AutoQuizCandidates(ctx context.Context) ([]models.User, error)
	TouchAutoQuiz(ctx context.Context, userID int64, now time.Time) error
}

// ContextSource lists enabled group contexts and records posts
type ContextSource interface {
	EnabledContexts(ctx context.Context) ([]models.ChatContext, error)
	TouchPosted(ctx context.Context, id int64, now time.Time) error
}

// TaskSource picks task templates for group posts
type TaskSource interface {
	RandomByType(ctx context.Context, taskType string) (*models.GroupTask, error)
}

// WordSource resolves a template's target word
type WordSource interface {
	GetByID(ctx context.Context, id int64) (*models.Word, error)
}

// Scheduler runs two independent sweeps on a minute tick: auto quizzes for
// individual users and practice tasks for group contexts. Each due entity is
// handled in its own goroutine; a per-entity in-flight set makes sure a slow
// delivery never overlaps the next sweep for the same entity.
type Scheduler struct {
	cron     *gocron.Scheduler
	engine   QuizSource
	users    UserSource
	contexts ContextSource
	tasks    TaskSource
	words    WordSource
	notifier Notifier

	mu       sync.Mutex
	inflight map[string]bool
}

// New creates a scheduler; Start begins ticking
func New(engine QuizSource, users UserSource, contexts ContextSource, tasks TaskSource, words WordSource, notifier Notifier) *Scheduler {
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		engine:   engine,
		users:    users,
		contexts: contexts,
		tasks:    tasks,
		words:    words,
		notifier: notifier,
		inflight: make(map[string]bool),
	}
}

// Start begins the minute tick in the background
func (s *Scheduler) Start() {
	s.cron.Every(1).Minute().SingletonMode().Do(func() {
		s.Tick(time.Now())
	})
	s.cron.StartAsync()
}

// Stop terminates the tick driver
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Tick runs one scan of both sweeps at the given time. Exported so the driver
// and manual triggers share one code path. A failure for one entity is logged
// and never aborts the rest of the scan.
func (s *Scheduler) Tick(now time.Time) {
	ctx := context.Background()
	s.sweepUsers(ctx, now)
	s.sweepGroups(ctx, now)
}

// sweepUsers delivers one quiz to every due user. Users with an active
// session or an unanswered question are excluded so the delivery cannot
// clobber a live question.
func (s *Scheduler) sweepUsers(ctx context.Context, now time.Time) {
	users, err := s.users.AutoQuizCandidates(ctx)
	if err != nil {
		log.Printf("Error getting auto quiz candidates: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, user := range users {
		if !user.AutoQuizDue(now) {
			continue
		}
		if s.engine.HasPending(user.UserID) {
			continue
		}

		key := fmt.Sprintf("user:%d", user.UserID)
		if !s.acquire(key) {
			continue
		}

		wg.Add(1)
		go func(user models.User) {
			defer wg.Done()
			defer s.release(key)
			s.deliverUserQuiz(ctx, user, now)
		}(user)
	}
	wg.Wait()
}

// deliverUserQuiz composes, delivers and only then advances the delivery
// timestamp. A failed compose or send leaves the timestamp alone so the next
// tick retries naturally.
func (s *Scheduler) deliverUserQuiz(ctx context.Context, user models.User, now time.Time) {
	q, err := s.engine.RequestAutoQuiz(ctx, user.UserID)
	if err != nil {
		// A manual quiz that arrived after the due check wins the slot
		if !errors.Is(err, quiz.ErrQuestionPending) {
			log.Printf("Error composing auto quiz for user %d: %v", user.UserID, err)
		}
		return
	}

	if err := s.notifier.SendQuiz(user.UserID, q); err != nil {
		log.Printf("Error sending auto quiz to user %d: %v", user.UserID, err)
		// Don't leave an undelivered question blocking future sweeps
		s.engine.Abandon(user.UserID)
		return
	}

	if err := s.users.TouchAutoQuiz(ctx, user.UserID, now); err != nil {
		log.Printf("Error updating last auto quiz time for user %d: %v", user.UserID, err)
	}
}

// sweepGroups posts one task into every due group context
func (s *Scheduler) sweepGroups(ctx context.Context, now time.Time) {
	contexts, err := s.contexts.EnabledContexts(ctx)
	if err != nil {
		log.Printf("Error getting enabled chat contexts: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, chatContext := range contexts {
		if !chatContext.PostDue(now) {
			continue
		}
		if !chatContext.TaskType.Valid {
			continue
		}

		key := fmt.Sprintf("chat:%d:%d", chatContext.ChatID, chatContext.TopicID.Int64)
		if !s.acquire(key) {
			continue
		}

		wg.Add(1)
		go func(chatContext models.ChatContext) {
			defer wg.Done()
			defer s.release(key)
			s.postGroupTask(ctx, chatContext, now)
		}(chatContext)
	}
	wg.Wait()
}

// postGroupTask picks a random template for the context's task type, binds the
// target word when the template has one, delivers and advances the timestamp.
// No eligible template means skip without touching the timestamp.
func (s *Scheduler) postGroupTask(ctx context.Context, chatContext models.ChatContext, now time.Time) {
	task, err := s.tasks.RandomByType(ctx, chatContext.TaskType.String)
	if err != nil {
		log.Printf("Error picking group task for chat %d: %v", chatContext.ChatID, err)
		return
	}
	if task == nil {
		return
	}

	text := task.Template
	if task.TargetWordID.Valid {
		word, err := s.words.GetByID(ctx, task.TargetWordID.Int64)
		if err != nil {
			log.Printf("Error resolving target word %d for group task %d: %v",
				task.TargetWordID.Int64, task.ID, err)
			return
		}
		text = task.Render(word.Greek)
	}

	if err := s.notifier.SendGroupTask(chatContext, text); err != nil {
		log.Printf("Error posting group task to chat %d: %v", chatContext.ChatID, err)
		return
	}

	if err := s.contexts.TouchPosted(ctx, chatContext.ID, now); err != nil {
		log.Printf("Error updating last posted time for chat context %d: %v", chatContext.ID, err)
	}
}

// acquire marks an entity as having a delivery in flight
func (s *Scheduler) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Scheduler) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
