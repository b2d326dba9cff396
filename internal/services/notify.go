package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramRequestTimeout = 10 * time.Second

// TelegramNotifier posts a short message about each new pending submission
// to the configured admin chats.
type TelegramNotifier struct {
	bot   *tgbotapi.BotAPI
	chats []int64
}

func NewTelegramNotifier(token string, chats []int64) (*TelegramNotifier, error) {
	client := &http.Client{Timeout: telegramRequestTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chats: chats}, nil
}

func (t *TelegramNotifier) PendingSubmitted(ctx context.Context, kind string, id int, summary string) error {
	text := fmt.Sprintf("New %s awaiting review (#%d)\n%s", kind, id, summary)
	var errs []error
	for _, chatID := range t.chats {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			break
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
