package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/goliatone/fleet-alerts/core"
)

const defaultRequestTimeout = 10 * time.Second

// botClient is the slice of tgbotapi.BotAPI the notifier uses; tests swap in
// a stub.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers alert text to a single Telegram chat. It satisfies
// core.Notifier; queueing and timeouts live with the caller, the notifier
// only bounds the underlying HTTP request.
type Notifier struct {
	bot    botClient
	chatID int64
}

func New(cfg core.TelegramConfig) (*Notifier, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram: chat id is required")
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot client: %w", err)
	}

	return &Notifier{bot: bot, chatID: cfg.ChatID}, nil
}

func (n *Notifier) Send(ctx context.Context, text string) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram: notifier is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

var _ core.Notifier = (*Notifier)(nil)
