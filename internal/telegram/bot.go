// Package telegram delivers notifications to a chat and receives operator
// commands through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// CommandHandler produces the reply to an operator command.
type CommandHandler interface {
	Handle(ctx context.Context, actorID int64, name, args string) string
}

// Bot wraps a Telegram bot account.
type Bot struct {
	api *tgbotapi.BotAPI
	log zerolog.Logger
}

// New authenticates the bot token against the public Bot API.
func New(token string, log zerolog.Logger) (*Bot, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, http.DefaultClient, log)
}

// NewWithEndpoint is New against a custom endpoint, formatted like
// tgbotapi.APIEndpoint ("<base>/bot%s/%s").
func NewWithEndpoint(token, endpoint string, client *http.Client, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	log.Info().Str("bot", api.Self.UserName).Msg("telegram bot authorized")
	return &Bot{api: api, log: log}, nil
}

// Send posts an HTML message to the chat identified by channelID.
func (b *Bot) Send(ctx context.Context, channelID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", channelID, err)
	}
	if _, err := b.api.Send(htmlMessage(chatID, message)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Listen long-polls for updates and answers commands until ctx is done.
func (b *Bot) Listen(ctx context.Context, h CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info().Msg("listening for commands")
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			msg, ok := reply(ctx, h, upd)
			if !ok {
				continue
			}
			if _, err := b.api.Send(msg); err != nil {
				b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("failed to send reply")
			}
		}
	}
}

// reply builds the answer to a command update. Non-command updates get none.
func reply(ctx context.Context, h CommandHandler, upd tgbotapi.Update) (tgbotapi.MessageConfig, bool) {
	m := upd.Message
	if m == nil || m.From == nil || m.Chat == nil || !m.IsCommand() {
		return tgbotapi.MessageConfig{}, false
	}
	text := h.Handle(ctx, m.From.ID, m.Command(), m.CommandArguments())
	msg := htmlMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	return msg, true
}

func htmlMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}
