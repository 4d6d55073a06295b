package notify

import (
	"context"
	"fmt"

	tgbotapi "gopkg.in/telegram-bot-api.v4"

	"github.com/msomdec/study-zen/internal/timer"
)

// MessageSender is the part of the Telegram bot API used for pushes.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatFunc resolves the Telegram chat linked to a user. A zero chat id means
// the user has no chat or has turned remote notifications off.
type ChatFunc func(ctx context.Context, userID int64) (int64, error)

// Telegram pushes completion notifications to each user's own Telegram chat.
type Telegram struct {
	bot  MessageSender
	chat ChatFunc
}

// NewTelegramBot connects to the Telegram bot API with token.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	bot.Debug = false
	return bot, nil
}

// NewTelegram creates a Telegram notifier that sends to the chat returned by chat.
func NewTelegram(bot MessageSender, chat ChatFunc) *Telegram {
	return &Telegram{bot: bot, chat: chat}
}

func (t *Telegram) Notify(ctx context.Context, userID int64, n timer.Notification) error {
	chatID, err := t.chat(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve telegram chat: %w", err)
	}
	if chatID == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, n.Title+"\n"+n.Body)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
