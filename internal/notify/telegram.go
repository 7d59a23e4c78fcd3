package notify

import (
	"fmt"

	"shareit/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender delivers a plain-text message to a chat.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Telegram sends operational notifications through a bot.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram connects the bot. Returns nil when no token is configured so
// callers can skip notifications entirely.
func NewTelegram(cfg config.TelegramConfig, logger *zerolog.Logger) (*Telegram, error) {
	if cfg.BotToken == "" {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram bot connected")
	return &Telegram{bot: bot}, nil
}

func (t *Telegram) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
