package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fit-companion/internal/app"
	"fit-companion/internal/config"
	"fit-companion/internal/metrics"
	"fit-companion/internal/plan"
	"fit-companion/internal/planner"
	"fit-companion/internal/tracker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API around the tracking application.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		app:          application,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if b.allowed(update.CallbackQuery.From.ID) {
			go b.handleCallbackQuery(update.CallbackQuery)
		}
		return
	}

	if update.Message == nil {
		return
	}

	if !b.allowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) allowed(id int64) bool {
	return b.cfg.TelegramAllowUserID == 0 || id == b.cfg.TelegramAllowUserID
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/today":
		b.handleToday(msg.Chat.ID, userIDOf(msg))
	case text == "/shop":
		b.handleShoppingList(msg.Chat.ID, userIDOf(msg))
	case text == "/finish":
		b.handleFinish(msg.Chat.ID, userIDOf(msg))
	case text == "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	case strings.HasPrefix(text, "/plan"):
		b.handleGenerate(msg.Chat.ID, userIDOf(msg), strings.TrimSpace(strings.TrimPrefix(text, "/plan")))
	default:
		b.send(msg.Chat.ID, "Commands:\n/plan <request> — generate a weekly plan\n/today — today's meals and workout\n/shop — shopping list for the rest of the week\n/finish — record today's workout session\n/metrics — usage report")
	}
}

func userIDOf(msg *tgbotapi.Message) string {
	return fmt.Sprintf("%d", msg.From.ID)
}

func (b *Bot) handleToday(chatID int64, userID string) {
	summary, err := b.app.Today(context.Background(), userID)
	if err != nil {
		var noPlan tracker.NoActivePlanError
		if errors.As(err, &noPlan) {
			b.send(chatID, "No active plan yet. Send /plan <what you want> to create one.")
			return
		}
		b.sendError(chatID, "loading today", err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%s*", summary.Label)
	if summary.Focus != "" {
		fmt.Fprintf(&sb, " — %s", summary.Focus)
	}
	fmt.Fprintf(&sb, "\n🔥 %d / %d kcal  💪 %dg protein\n\n",
		summary.NutritionLog.Totals.Calories, summary.CalorieTarget, summary.NutritionLog.Totals.Protein)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range summary.Plan.Meals() {
		mark := "⬜"
		if summary.NutritionLog.Done(plan.ItemKey{Day: summary.DayIndex, Item: m.Index}) {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %s (%d kcal)", mark, m.Meal.Name, m.Meal.Calories)
		data := fmt.Sprintf("meal|%d|%d", summary.DayIndex, m.Index)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	for _, ex := range summary.Plan.Exercises() {
		mark := "⬜"
		if summary.WorkoutLog.Done(plan.ItemKey{Day: summary.DayIndex, Item: ex.Index}) {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %s %dx%d", mark, ex.Exercise.Name, ex.Exercise.Sets.Int(), ex.Exercise.Reps.Int())
		data := fmt.Sprintf("ex|%d|%d", summary.DayIndex, ex.Index)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}

	reply := tgbotapi.NewMessage(chatID, sb.String())
	reply.ParseMode = "Markdown"
	if len(rows) > 0 {
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	b.api.Send(reply)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", query.From.ID)

	parts := strings.Split(query.Data, "|")
	if len(parts) != 3 {
		return
	}
	day, _ := strconv.Atoi(parts[1])
	item, _ := strconv.Atoi(parts[2])

	var err error
	switch parts[0] {
	case "meal":
		_, err = b.app.ToggleMeal(ctx, userID, day, item)
	case "ex":
		_, err = b.app.ToggleExercise(ctx, userID, day, item, "")
	default:
		return
	}

	// Answer callback to remove spinner
	ack := ""
	var window tracker.OutOfWindowError
	if errors.As(err, &window) {
		ack = fmt.Sprintf("Only today is editable (that day is in the %s)", window.Direction)
	} else if err != nil {
		log.Printf("Error toggling %s: %v", query.Data, err)
		ack = "Something went wrong"
	}
	b.api.Request(tgbotapi.NewCallback(query.ID, ack))

	if err == nil && query.Message != nil {
		// Re-render so the checkmarks reflect the new state.
		b.handleToday(query.Message.Chat.ID, userID)
	}
}

func (b *Bot) handleFinish(chatID int64, userID string) {
	result, err := b.app.FinishSession(context.Background(), userID, plan.DayIndex(time.Now()))
	if err != nil {
		var empty tracker.EmptySessionError
		if errors.As(err, &empty) {
			b.send(chatID, "Nothing completed yet today — check off at least one exercise first.")
			return
		}
		b.sendError(chatID, "finishing session", err)
		return
	}

	text := fmt.Sprintf("🏁 *Session recorded*\nExercises: %d\nSets: %d", result.CompletedExercises, result.RecordedSets)
	if len(result.DroppedExercises) > 0 {
		text += fmt.Sprintf("\n⚠️ Not in catalog (skipped): %s", strings.Join(result.DroppedExercises, ", "))
	}
	b.sendMarkdown(chatID, text)
}

func (b *Bot) handleShoppingList(chatID int64, userID string) {
	items, err := b.app.ShoppingList(context.Background(), userID)
	if err != nil {
		var noPlan tracker.NoActivePlanError
		if errors.As(err, &noPlan) {
			b.send(chatID, "No active plan yet. Send /plan <what you want> to create one.")
			return
		}
		b.sendError(chatID, "building shopping list", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List* (rest of the week)\n\n")
	if len(items) == 0 {
		sb.WriteString("_Nothing left to buy this week._")
	}
	for _, item := range items {
		fmt.Fprintf(&sb, "• %s\n", item)
	}
	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) handleGenerate(chatID int64, userID, request string) {
	if request == "" {
		b.send(chatID, "Tell me what kind of plan you want, e.g. /plan cut to 2200 kcal, 4 gym days")
		return
	}

	statusMsg := tgbotapi.NewMessage(chatID, "🏗 *Building your week...*")
	statusMsg.ParseMode = "Markdown"
	sent, err := b.api.Send(statusMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	wp, err := b.app.GeneratePlan(context.Background(), userID, request, planner.Profile{Goal: request})
	var finalText string
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error generating plan:*\n```\n%v\n```", safeErr)
	} else {
		finalText = formatPlanMarkdown(wp)
	}

	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func formatPlanMarkdown(wp *plan.WeeklyPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%s*\n\n", wp.Title)
	for _, d := range wp.Days {
		fmt.Fprintf(&sb, "*%s*", d.Label)
		if d.Focus != "" {
			fmt.Fprintf(&sb, " — _%s_", d.Focus)
		}
		sb.WriteString("\n")
		for _, m := range d.Meals() {
			fmt.Fprintf(&sb, "  🍽 %s (%d kcal)\n", m.Meal.Name, m.Meal.Calories)
		}
		for _, ex := range d.Exercises() {
			fmt.Fprintf(&sb, "  🏋️ %s %dx%d\n", ex.Exercise.Name, ex.Exercise.Sets.Int(), ex.Exercise.Reps.Int())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Use /today to start checking things off.")
	return sb.String()
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Database: %s\n", health.DatabaseSize)

	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) send(chatID int64, text string) {
	b.api.Send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) sendError(chatID int64, action string, err error) {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.sendMarkdown(chatID, fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr))
}
