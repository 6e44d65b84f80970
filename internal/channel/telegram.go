package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"answerbot/internal/agent"
)

const (
	telegramMaxMsgLen      = 4000
	telegramMaxSendRetries = 3
)

// Answerer runs one prompt through the agent pipeline.
type Answerer interface {
	Execute(ctx context.Context, prompt string) agent.Result
}

// Telegram polls a bot for messages and answers each one through the agent.
type Telegram struct {
	token     string
	allowFrom []int64 // allowed user IDs (empty = allow all)
	parseMode string
	toolNames []string

	bot      *tgbotapi.BotAPI
	answerer Answerer
	logger   *slog.Logger
}

type TelegramConfig struct {
	Token     string
	AllowFrom []string // user IDs as strings
	ParseMode string
	ToolNames []string
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig, answerer Answerer) *Telegram {
	var allowed []int64
	for _, s := range cfg.AllowFrom {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			allowed = append(allowed, id)
		}
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = "Markdown"
	}
	return &Telegram{
		token:     cfg.Token,
		allowFrom: allowed,
		parseMode: cfg.ParseMode,
		toolNames: cfg.ToolNames,
		answerer:  answerer,
		logger:    cfg.Logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and begins polling for updates. It blocks until
// ctx is cancelled.
func (t *Telegram) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !t.isAllowed(userID) {
		t.logger.Warn("unauthorized telegram user",
			"user_id", userID,
			"username", update.Message.From.UserName,
		)
		t.sendMessage(chatID, "Unauthorized. Your user ID is not in the allow list.")
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	if update.Message.IsCommand() {
		t.handleCommand(chatID, update.Message)
		return
	}

	t.logger.Info("telegram message received",
		"user_id", userID,
		"chat_id", chatID,
		"text_len", len(text),
	)

	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = t.bot.Send(typing)

	res := t.answerer.Execute(ctx, text)
	t.sendMessage(chatID, res.Output)
}

func (t *Telegram) handleCommand(chatID int64, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		t.sendMessage(chatID, "Hello! Ask me anything and I'll pick the right tool to answer.\n\nCommands:\n/tools - List available tools\n/status - Show bot status\n/help - Show this message")
	case "help":
		t.sendMessage(chatID, "Send me any question. I can search the web, check the weather, scrape pages, read subreddits, and do arithmetic.\n\nCommands:\n/tools - List available tools\n/status - Bot status")
	case "tools":
		if len(t.toolNames) == 0 {
			t.sendMessage(chatID, "No tools configured.")
			return
		}
		t.sendMessage(chatID, "Available tools:\n- "+strings.Join(t.toolNames, "\n- "))
	case "status":
		t.sendMessage(chatID, fmt.Sprintf("answerbot running\n\nBot: @%s\nYour ID: %d\nChat ID: %d", t.bot.Self.UserName, msg.From.ID, chatID))
	default:
		t.sendMessage(chatID, "Unknown command. Type /help for available commands.")
	}
}

func (t *Telegram) isAllowed(userID int64) bool {
	if len(t.allowFrom) == 0 {
		return true
	}
	for _, id := range t.allowFrom {
		if id == userID {
			return true
		}
	}
	return false
}

func (t *Telegram) sendMessage(chatID int64, text string) {
	for _, chunk := range splitMessage(text, telegramMaxMsgLen) {
		t.sendChunk(chatID, chunk)
	}
}

// splitMessage breaks text into chunks of at most maxLen bytes, preferring
// line boundaries. A hard cut never lands inside a multi-byte rune.
func splitMessage(text string, maxLen int) []string {
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}
		cutAt := strings.LastIndex(text[:maxLen], "\n")
		if cutAt < maxLen/2 {
			cutAt = maxLen
			for cutAt > maxLen-utf8.UTFMax && !utf8.RuneStart(text[cutAt]) {
				cutAt--
			}
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}

// sendChunk sends a single message chunk with retry and rate limit handling.
// Markdown first, plain text on parse errors, backoff on everything else.
func (t *Telegram) sendChunk(chatID int64, text string) {
	const maxRetries = telegramMaxSendRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		msg := tgbotapi.NewMessage(chatID, text)
		if attempt == 0 && t.parseMode != "" {
			msg.ParseMode = t.parseMode
		}

		_, err := t.bot.Send(msg)
		if err == nil {
			return
		}

		errStr := err.Error()

		if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			retryAfter := time.Duration(attempt+1) * 3 * time.Second
			t.logger.Warn("telegram rate limited, backing off",
				"retry_after", retryAfter, "attempt", attempt+1,
			)
			time.Sleep(retryAfter)
			continue
		}

		if attempt == 0 && msg.ParseMode != "" &&
			strings.Contains(errStr, "can't parse entities") {
			t.logger.Warn("telegram markdown parse error, retrying as plain text",
				"err", err, "parseMode", t.parseMode,
			)
			plainMsg := tgbotapi.NewMessage(chatID, text)
			if _, err2 := t.bot.Send(plainMsg); err2 == nil {
				return
			}
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt+1) * time.Second
			t.logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff)
			time.Sleep(backoff)
			continue
		}

		t.logger.Error("telegram send failed after retries", "err", err, "attempts", maxRetries+1)
	}
}
