package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/excel"
	"github.com/example/greekbot/internal/quiz"
	"github.com/example/greekbot/internal/scheduler"
	"github.com/example/greekbot/pkg/models"
)

// Bot represents the Telegram bot application
type Bot struct {
	api    *tgbotapi.BotAPI
	token  string
	engine *quiz.Engine
	config *Config

	words    *database.WordRepository
	stats    *database.StatsRepository
	users    *database.UserRepository
	contexts *database.ChatContextRepository
	tasks    *database.GroupTaskRepository
	admins   *database.AdminRepository
	importer *excel.Importer

	scheduler        *scheduler.Scheduler
	schedulerEnabled bool
	adminUserIDs     map[int64]bool
}

// New creates a new bot instance around a ready quiz engine
func New(engine *quiz.Engine, config *Config) (*Bot, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	words := database.NewWordRepository()

	b := &Bot{
		token:            token,
		engine:           engine,
		config:           config,
		words:            words,
		stats:            database.NewStatsRepository(),
		users:            database.NewUserRepository(),
		contexts:         database.NewChatContextRepository(),
		tasks:            database.NewGroupTaskRepository(),
		admins:           database.NewAdminRepository(),
		importer:         excel.NewImporter(words),
		schedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		adminUserIDs:     make(map[int64]bool),
	}

	if adminIDs := os.Getenv("ADMIN_USER_IDS"); adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			b.adminUserIDs[id] = true
		}
	}

	return b, nil
}

// Start connects to Telegram and processes updates until ctx is canceled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}

	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	if b.schedulerEnabled {
		b.scheduler = scheduler.New(b.engine, b.users, b.contexts, b.tasks, b.words, b)
		b.scheduler.Start()
		log.Println("Scheduler started")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	log.Println("Bot stopped")
}

// isAdmin checks the env whitelist first, then the admins table
func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	if b.adminUserIDs[userID] {
		return true
	}
	ok, err := b.admins.IsAdmin(ctx, userID)
	if err != nil {
		log.Printf("Error checking admin for user %d: %v", userID, err)
		return false
	}
	return ok
}

// SendQuiz implements the scheduler.Notifier interface: it delivers one quiz
// question with answer buttons to a private chat
func (b *Bot) SendQuiz(userID int64, q *quiz.Question) error {
	msg := tgbotapi.NewMessage(userID, questionText(q))
	msg.ReplyMarkup = answerKeyboard(q)
	_, err := b.api.Send(msg)
	return err
}

// SendGroupTask implements the scheduler.Notifier interface. Forum topics are
// addressed by replying to the topic's root message.
func (b *Bot) SendGroupTask(chatContext models.ChatContext, text string) error {
	msg := tgbotapi.NewMessage(chatContext.ChatID, text)
	if chatContext.TopicID.Valid {
		msg.ReplyToMessageID = int(chatContext.TopicID.Int64)
	}
	_, err := b.api.Send(msg)
	return err
}

// questionText renders a question's prompt for Telegram
func questionText(q *quiz.Question) string {
	emoji := "🇬🇷→🇷🇺"
	if q.Direction == quiz.RussianToGreek {
		emoji = "🇷🇺→🇬🇷"
	}
	return fmt.Sprintf("%s %s\n\n❓ %s\n\nВыберите правильный ответ:", emoji, q.Direction, q.Prompt)
}

// answerKeyboard builds one button per answer option
func answerKeyboard(q *quiz.Question) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, fmt.Sprintf("answer_%d", i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
