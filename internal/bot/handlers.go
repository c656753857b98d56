package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/greekbot/internal/quiz"
	"github.com/example/greekbot/pkg/models"
)

// awaitingImport tracks admins who were asked to upload an xlsx file
var awaitingImport sync.Map

// handleUpdate dispatches one incoming Telegram update
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	message := update.Message

	if message.From != nil {
		if err := b.users.Ensure(ctx, message.From.ID, message.From.UserName, message.From.FirstName); err != nil {
			log.Printf("Error ensuring user %d: %v", message.From.ID, err)
		}
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Document != nil {
		if _, ok := awaitingImport.LoadAndDelete(message.From.ID); ok {
			b.handleImportUpload(ctx, message)
			return
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "quiz":
		b.handleQuiz(ctx, message)
	case "quiz_session":
		b.handleQuizSession(ctx, message)
	case "stop":
		b.handleStopSession(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	case "settings":
		b.handleSettings(ctx, message)
	case "add":
		b.requireAdmin(ctx, message, b.handleAddWord)
	case "addtask":
		b.requireAdmin(ctx, message, b.handleAddTask)
	case "group_enable":
		b.requireAdmin(ctx, message, b.handleGroupEnable)
	case "group_disable":
		b.requireAdmin(ctx, message, b.handleGroupDisable)
	case "import":
		b.requireAdmin(ctx, message, b.handleImport)
	case "export":
		b.requireAdmin(ctx, message, b.handleExport)
	default:
		b.reply(message.Chat.ID, "Неизвестная команда. Используйте /help для списка команд.")
	}
}

// requireAdmin runs the handler only for whitelisted users
func (b *Bot) requireAdmin(ctx context.Context, message *tgbotapi.Message, handler func(context.Context, *tgbotapi.Message)) {
	if !b.isAdmin(ctx, message.From.ID) {
		b.reply(message.Chat.ID, "Эта команда доступна только администраторам.")
		return
	}
	handler(ctx, message)
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := fmt.Sprintf("Привет, %s!\n\n"+
		"Я бот для изучения греческого языка.\n\n"+
		"📚 Квизы:\n"+
		"/quiz - получить один вопрос\n"+
		"/quiz_session - начать непрерывную сессию\n"+
		"/stop - остановить сессию\n\n"+
		"📊 /stats - ваша статистика\n"+
		"⚙️ /settings - настройки\n"+
		"ℹ️ /help - полная справка", message.From.FirstName)
	b.reply(message.Chat.ID, text)
	log.Printf("User %d (@%s) started the bot", message.From.ID, message.From.UserName)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	b.reply(message.Chat.ID,
		"📚 Greek Learning Bot - Справка\n\n"+
			"/quiz - один вопрос\n"+
			"/quiz_session - непрерывная сессия вопросов\n"+
			"/stop - остановить сессию\n"+
			"/stats - статистика ответов\n"+
			"/settings - авторассылка и интервал\n\n"+
			"Команды администратора:\n"+
			"/add слово - перевод - тип\n"+
			"/addtask тип | шаблон с {word} | id_слова\n"+
			"/group_enable тип интервал - включить задания в этом чате\n"+
			"/group_disable - выключить задания в этом чате\n"+
			"/import - загрузить словарь из .xlsx\n"+
			"/export - выгрузить словарь в .xlsx")
}

// handleQuiz sends a single question
func (b *Bot) handleQuiz(ctx context.Context, message *tgbotapi.Message) {
	q, err := b.engine.RequestQuiz(ctx, message.From.ID)
	if err != nil {
		if errors.Is(err, quiz.ErrInsufficientVocabulary) {
			b.reply(message.Chat.ID, "❌ Недостаточно слов в базе для создания квиза.\nПопросите админа добавить больше слов.")
			return
		}
		log.Printf("Error composing quiz for user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не получилось составить вопрос, попробуйте позже.")
		return
	}

	if err := b.SendQuiz(message.From.ID, q); err != nil {
		log.Printf("Error sending quiz to user %d: %v", message.From.ID, err)
		b.engine.Abandon(message.From.ID)
	}
}

// handleQuizSession starts a continuous session
func (b *Bot) handleQuizSession(ctx context.Context, message *tgbotapi.Message) {
	q, err := b.engine.StartSession(ctx, message.From.ID)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrSessionConflict):
			b.reply(message.Chat.ID, "⚠️ У вас уже активна сессия квиза.\nИспользуйте /stop для остановки.")
		case errors.Is(err, quiz.ErrInsufficientVocabulary):
			b.reply(message.Chat.ID, "❌ Недостаточно слов в базе для создания квиза.")
		default:
			log.Printf("Error starting session for user %d: %v", message.From.ID, err)
			b.reply(message.Chat.ID, "❌ Не получилось начать сессию, попробуйте позже.")
		}
		return
	}

	b.reply(message.Chat.ID, "🎯 Сессия квиза начата!\n\nОтвечайте на вопросы один за другим.\nИспользуйте /stop для остановки.")

	if err := b.SendQuiz(message.From.ID, q); err != nil {
		log.Printf("Error sending session question to user %d: %v", message.From.ID, err)
	}
}

func (b *Bot) handleStopSession(ctx context.Context, message *tgbotapi.Message) {
	summary, err := b.engine.StopSession(ctx, message.From.ID)
	if err != nil {
		log.Printf("Error stopping session for user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не получилось остановить сессию, попробуйте ещё раз.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf(
		"🛑 Сессия квиза остановлена.\n\n"+
			"За сессию: %d/%d\n"+
			"📊 Всего: %d/%d (%.1f%%)\n\n"+
			"Отличная работа! 💪",
		summary.Correct, summary.Asked,
		summary.Totals.TotalCorrect, summary.Totals.TotalQuestions, summary.Totals.SuccessPercent()))
	log.Printf("User %d stopped quiz session", message.From.ID)
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	totals, err := b.stats.Totals(ctx, message.From.ID)
	if err != nil {
		log.Printf("Error loading totals for user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не получилось загрузить статистику.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf(
		"📊 Ваша статистика:\nПравильных ответов: %d/%d (%.1f%%)",
		totals.TotalCorrect, totals.TotalQuestions, totals.SuccessPercent()))
}

// handleSettings shows the auto-quiz toggle and interval buttons
func (b *Bot) handleSettings(ctx context.Context, message *tgbotapi.Message) {
	user, err := b.users.GetByID(ctx, message.From.ID)
	if err != nil || user == nil {
		log.Printf("Error loading user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не получилось загрузить настройки.")
		return
	}

	state := "включена"
	toggleLabel := "Выключить авторассылку"
	if !user.AutoQuizEnabled {
		state = "выключена"
		toggleLabel = "Включить авторассылку"
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf(
		"⚙️ Настройки\n\nАвторассылка квизов: %s\nИнтервал: %d мин.\nВопросов в сессии: %d",
		state, user.SessionIntervalMinutes, user.QuestionsPerSession))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, "settings_toggle_auto"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("15 мин", "settings_interval_15"),
			tgbotapi.NewInlineKeyboardButtonData("30 мин", "settings_interval_30"),
			tgbotapi.NewInlineKeyboardButtonData("60 мин", "settings_interval_60"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("5 вопросов", "settings_questions_5"),
			tgbotapi.NewInlineKeyboardButtonData("10 вопросов", "settings_questions_10"),
			tgbotapi.NewInlineKeyboardButtonData("20 вопросов", "settings_questions_20"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending settings to user %d: %v", message.From.ID, err)
	}
}

// handleAddWord parses "/add greek - russian - type" and stores the word
func (b *Bot) handleAddWord(ctx context.Context, message *tgbotapi.Message) {
	parts := strings.Split(message.CommandArguments(), "-")
	if len(parts) != 3 {
		b.reply(message.Chat.ID, "Формат: /add слово - перевод - тип\nТипы: noun, verb, adjective, adverb, pronoun, preposition, conjunction, phrase")
		return
	}

	greek := strings.TrimSpace(parts[0])
	russian := strings.TrimSpace(parts[1])
	wordType := strings.TrimSpace(parts[2])

	if greek == "" || russian == "" || !models.ValidWordType(wordType) {
		b.reply(message.Chat.ID, "Неверный формат. Проверьте слово, перевод и тип.")
		return
	}

	exists, err := b.words.ExistsByGreek(ctx, greek, models.WordType(wordType))
	if err != nil {
		log.Printf("Error checking word %q: %v", greek, err)
		b.reply(message.Chat.ID, "❌ Ошибка базы данных.")
		return
	}
	if exists {
		b.reply(message.Chat.ID, fmt.Sprintf("Слово «%s» уже есть в базе.", greek))
		return
	}

	word := &models.Word{
		Greek:     greek,
		Russian:   russian,
		WordType:  models.WordType(wordType),
		CreatedBy: message.From.ID,
	}
	if err := b.words.Create(ctx, word); err != nil {
		log.Printf("Error creating word %q: %v", greek, err)
		b.reply(message.Chat.ID, "❌ Не получилось сохранить слово.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf("✅ Добавлено: %s — %s (%s)", greek, russian, wordType))
}

// handleAddTask parses "/addtask type | template | word_id" and stores a
// group task template. The word id part is optional.
func (b *Bot) handleAddTask(ctx context.Context, message *tgbotapi.Message) {
	parts := strings.Split(message.CommandArguments(), "|")
	if len(parts) < 2 {
		b.reply(message.Chat.ID, "Формат: /addtask тип | шаблон с {word} | id_слова (необязательно)\nТипы: conjugation, translation, vocabulary, custom")
		return
	}

	task := &models.GroupTask{
		TaskType:  strings.TrimSpace(parts[0]),
		Template:  strings.TrimSpace(parts[1]),
		CreatedBy: message.From.ID,
	}
	if len(parts) >= 3 {
		if id, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64); err == nil {
			task.TargetWordID = sql.NullInt64{Int64: id, Valid: true}
		}
	}

	if err := b.tasks.Create(ctx, task); err != nil {
		log.Printf("Error creating group task: %v", err)
		b.reply(message.Chat.ID, "❌ Не получилось сохранить задание.")
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("✅ Задание #%d добавлено (%s).", task.ID, task.TaskType))
}

// handleGroupEnable turns on scheduled tasks for the current chat/topic
func (b *Bot) handleGroupEnable(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) < 1 {
		b.reply(message.Chat.ID, "Формат: /group_enable тип [интервал_минут]\nТипы: conjugation, translation, vocabulary, custom")
		return
	}

	taskType := args[0]
	interval := b.config.GroupPostIntervalMinutes
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			interval = v
		}
	}

	chatContext := &models.ChatContext{
		ChatID:                  message.Chat.ID,
		ChatType:                message.Chat.Type,
		TopicID:                 topicOf(message),
		Enabled:                 true,
		TaskType:                sql.NullString{String: taskType, Valid: true},
		ScheduleIntervalMinutes: interval,
	}
	if err := b.contexts.Upsert(ctx, chatContext); err != nil {
		log.Printf("Error enabling chat context %d: %v", message.Chat.ID, err)
		b.reply(message.Chat.ID, "❌ Не получилось включить задания.")
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("✅ Задания типа «%s» включены, интервал %d мин.", taskType, interval))
}

func (b *Bot) handleGroupDisable(ctx context.Context, message *tgbotapi.Message) {
	if err := b.contexts.SetEnabled(ctx, message.Chat.ID, topicOf(message), false); err != nil {
		log.Printf("Error disabling chat context %d: %v", message.Chat.ID, err)
		b.reply(message.Chat.ID, "❌ Не получилось выключить задания.")
		return
	}
	b.reply(message.Chat.ID, "🛑 Задания в этом чате выключены.")
}

// handleImport asks the admin to upload the workbook
func (b *Bot) handleImport(ctx context.Context, message *tgbotapi.Message) {
	awaitingImport.Store(message.From.ID, true)
	b.reply(message.Chat.ID, "📥 Отправьте .xlsx файл со словами.\nКолонки: greek | russian | word_type")
}

// handleImportUpload downloads the document and feeds it to the importer
func (b *Bot) handleImportUpload(ctx context.Context, message *tgbotapi.Message) {
	fileURL, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		log.Printf("Error getting file URL: %v", err)
		b.reply(message.Chat.ID, "❌ Не получилось скачать файл.")
		return
	}

	resp, err := http.Get(fileURL)
	if err != nil {
		log.Printf("Error downloading import file: %v", err)
		b.reply(message.Chat.ID, "❌ Не получилось скачать файл.")
		return
	}
	defer resp.Body.Close()

	result, err := b.importer.ImportReader(ctx, resp.Body, message.From.ID)
	if err != nil {
		log.Printf("Error importing words: %v", err)
		b.reply(message.Chat.ID, "❌ Ошибка импорта: "+err.Error())
		return
	}

	text := fmt.Sprintf("📥 Импорт завершён.\nДобавлено: %d\nПропущено: %d", result.Added, result.Skipped)
	if len(result.Errors) > 0 {
		text += fmt.Sprintf("\nОшибок: %d (первая: %s)", len(result.Errors), result.Errors[0])
	}
	b.reply(message.Chat.ID, text)
}

// handleExport sends the vocabulary back as an xlsx document
func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) {
	data, err := b.importer.Export(ctx)
	if err != nil {
		log.Printf("Error exporting words: %v", err)
		b.reply(message.Chat.ID, "❌ Не получилось выгрузить словарь.")
		return
	}

	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  "vocabulary.xlsx",
		Bytes: data,
	})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending export to user %d: %v", message.From.ID, err)
	}
}

// handleCallbackQuery routes answer and settings button presses
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	switch {
	case strings.HasPrefix(query.Data, "answer_"):
		b.handleAnswer(ctx, query)
	case query.Data == "settings_toggle_auto":
		b.handleToggleAuto(ctx, query)
	case strings.HasPrefix(query.Data, "settings_interval_"):
		b.handleSetInterval(ctx, query)
	case strings.HasPrefix(query.Data, "settings_questions_"):
		b.handleSetQuestions(ctx, query)
	}
}

// handleAnswer checks the chosen option, shows the verdict and, in session
// mode, sends the next question
func (b *Bot) handleAnswer(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	index, err := strconv.Atoi(strings.TrimPrefix(query.Data, "answer_"))
	if err != nil {
		return
	}

	result, err := b.engine.SubmitAnswer(ctx, userID, index)
	if err != nil {
		if errors.Is(err, quiz.ErrStaleQuestion) {
			b.editMessage(query, "⌛ Этот вопрос устарел. Используйте /quiz для нового вопроса.")
			return
		}
		log.Printf("Error submitting answer for user %d: %v", userID, err)
		b.editMessage(query, "❌ Не получилось проверить ответ, попробуйте ещё раз.")
		return
	}

	var text string
	if result.Correct {
		text = "✅ Правильно!\n\n"
	} else {
		text = fmt.Sprintf("❌ Неправильно.\n\nПравильный ответ: %s\n\n", result.CorrectOption)
	}
	text += fmt.Sprintf("📊 Ваша статистика:\nПравильных ответов: %d/%d (%.1f%%)",
		result.Totals.TotalCorrect, result.Totals.TotalQuestions, result.Totals.SuccessPercent())

	switch {
	case result.SessionEnded:
		text += "\n\n🛑 Сессия завершена.\nИспользуйте /quiz_session для новой сессии."
	case result.Next == nil:
		text += "\n\nИспользуйте /quiz для следующего вопроса"
	}

	b.editMessage(query, text)

	if result.Next != nil {
		if err := b.SendQuiz(userID, result.Next); err != nil {
			log.Printf("Error sending next session question to user %d: %v", userID, err)
		}
	}

	verdict := "incorrectly"
	if result.Correct {
		verdict = "correctly"
	}
	log.Printf("User %d answered %s", userID, verdict)
}

func (b *Bot) handleToggleAuto(ctx context.Context, query *tgbotapi.CallbackQuery) {
	user, err := b.users.GetByID(ctx, query.From.ID)
	if err != nil || user == nil {
		log.Printf("Error loading user %d: %v", query.From.ID, err)
		return
	}

	enabled := !user.AutoQuizEnabled
	if err := b.users.SetAutoQuizEnabled(ctx, query.From.ID, enabled); err != nil {
		log.Printf("Error toggling auto quiz for user %d: %v", query.From.ID, err)
		return
	}

	if enabled {
		b.editMessage(query, "✅ Авторассылка квизов включена.")
	} else {
		b.editMessage(query, "🛑 Авторассылка квизов выключена.")
	}
}

func (b *Bot) handleSetInterval(ctx context.Context, query *tgbotapi.CallbackQuery) {
	minutes, err := strconv.Atoi(strings.TrimPrefix(query.Data, "settings_interval_"))
	if err != nil || minutes <= 0 {
		return
	}

	if err := b.users.SetSessionInterval(ctx, query.From.ID, minutes); err != nil {
		log.Printf("Error setting interval for user %d: %v", query.From.ID, err)
		return
	}
	b.editMessage(query, fmt.Sprintf("✅ Интервал авторассылки: %d мин.", minutes))
}

func (b *Bot) handleSetQuestions(ctx context.Context, query *tgbotapi.CallbackQuery) {
	count, err := strconv.Atoi(strings.TrimPrefix(query.Data, "settings_questions_"))
	if err != nil || count <= 0 {
		return
	}

	if err := b.users.SetQuestionsPerSession(ctx, query.From.ID, count); err != nil {
		log.Printf("Error setting session length for user %d: %v", query.From.ID, err)
		return
	}
	b.editMessage(query, fmt.Sprintf("✅ Вопросов в сессии: %d.", count))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) editMessage(query *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Error editing message in chat %d: %v", query.Message.Chat.ID, err)
	}
}

// topicOf extracts the forum topic ID a message was posted in, if any
func topicOf(message *tgbotapi.Message) sql.NullInt64 {
	if message.ReplyToMessage != nil && message.ReplyToMessage.MessageID != 0 && message.Chat.IsSuperGroup() {
		return sql.NullInt64{Int64: int64(message.ReplyToMessage.MessageID), Valid: true}
	}
	return sql.NullInt64{}
}
