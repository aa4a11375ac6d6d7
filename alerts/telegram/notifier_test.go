package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/goliatone/fleet-alerts/core"
)

type stubBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (s *stubBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, s.err
}

func TestNew_RequiresTokenAndChat(t *testing.T) {
	if _, err := New(core.TelegramConfig{ChatID: 1}); err == nil {
		t.Fatalf("expected missing token to fail")
	}
	if _, err := New(core.TelegramConfig{BotToken: "token"}); err == nil {
		t.Fatalf("expected missing chat id to fail")
	}
}

func TestSend_DeliversToConfiguredChat(t *testing.T) {
	bot := &stubBot{}
	notifier := &Notifier{bot: bot, chatID: 42}

	if err := notifier.Send(context.Background(), "🚨 Speeding Alert"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", bot.sent[0])
	}
	if msg.ChatID != 42 {
		t.Fatalf("expected chat id 42, got %d", msg.ChatID)
	}
	if msg.Text != "🚨 Speeding Alert" {
		t.Fatalf("unexpected text %q", msg.Text)
	}
}

func TestSend_PropagatesClientError(t *testing.T) {
	notifier := &Notifier{bot: &stubBot{err: errors.New("telegram down")}, chatID: 42}
	if err := notifier.Send(context.Background(), "hello"); err == nil {
		t.Fatalf("expected client error to propagate")
	}
}

func TestSend_HonorsCancelledContext(t *testing.T) {
	bot := &stubBot{}
	notifier := &Notifier{bot: bot, chatID: 42}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := notifier.Send(ctx, "hello"); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
	if len(bot.sent) != 0 {
		t.Fatalf("expected no delivery on cancelled context")
	}
}
