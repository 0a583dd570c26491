// Package telegram delivers reminder notifications through the Telegram
// Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/store"
)

// ErrNoChatConfigured is returned when the user has no Telegram chat bound.
var ErrNoChatConfigured = errors.New("user has no telegram chat configured")

// BotAPI is the slice of the Telegram client the notifier needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends reminder messages over Telegram. It resolves the target
// chat from the user record.
type Notifier struct {
	bot       BotAPI
	userStore store.UserStore
	logger    *slog.Logger
}

// NewNotifier creates a Notifier backed by the given bot client.
func NewNotifier(bot BotAPI, userStore store.UserStore, log *slog.Logger) *Notifier {
	if bot == nil {
		panic("bot cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Notifier{
		bot:       bot,
		userStore: userStore,
		logger:    log.With(slog.String("component", "telegram_notifier")),
	}
}

// Send implements reminder.Notifier.
func (n *Notifier) Send(ctx context.Context, userID uuid.UUID, message string) error {
	user, err := n.userStore.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve notification target: %w", err)
	}

	if user.TelegramChatID == 0 {
		return ErrNoChatConfigured
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, message)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("failed to send telegram message",
			slog.String("user_id", userID.String()),
			slog.Int64("chat_id", user.TelegramChatID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}
