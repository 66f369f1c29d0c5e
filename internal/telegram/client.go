// Package telegram connects the chat core to the Telegram Bot API.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot relies on.
type BotAPI interface {
	// Send delivers any chattable and returns the resulting message
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)

	// GetUpdatesChan starts long polling and returns the update stream
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel

	// StopReceivingUpdates ends long polling
	StopReceivingUpdates()
}

var _ BotAPI = (*tgbotapi.BotAPI)(nil)

// Connect authenticates with the Bot API using token.
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	bot.Debug = debug

	return bot, nil
}
