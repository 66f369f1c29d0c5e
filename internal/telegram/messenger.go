package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/joshsymonds/relaybot/internal/chat"
)

// DefaultPollTimeout is the long-polling timeout in seconds.
const DefaultPollTimeout = 60

var _ chat.Transport = (*Messenger)(nil)

// Messenger implements chat.Transport on top of the Bot API and streams
// inbound updates as core events.
type Messenger struct {
	api         BotAPI
	logger      *slog.Logger
	stopOnce    sync.Once
	mu          sync.Mutex
	subscribed  bool
	pollTimeout int
}

// MessengerOption configures the messenger.
type MessengerOption func(*Messenger)

// WithPollTimeout sets the long-polling timeout in seconds.
func WithPollTimeout(seconds int) MessengerOption {
	return func(m *Messenger) {
		if seconds > 0 {
			m.pollTimeout = seconds
		}
	}
}

// WithMessengerLogger sets a custom logger.
func WithMessengerLogger(logger *slog.Logger) MessengerOption {
	return func(m *Messenger) {
		m.logger = logger
	}
}

// NewMessenger creates a new Telegram messenger.
func NewMessenger(api BotAPI, opts ...MessengerOption) *Messenger {
	m := &Messenger{
		api:         api,
		logger:      slog.Default(),
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers content to chatID with the method matching its kind.
func (m *Messenger) Send(ctx context.Context, chatID int64, content chat.Content) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var c tgbotapi.Chattable
	switch content.Kind {
	case chat.KindText:
		c = tgbotapi.NewMessage(chatID, content.Ref)
	case chat.KindPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(content.Ref))
		photo.Caption = content.Caption
		c = photo
	case chat.KindVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(content.Ref))
		video.Caption = content.Caption
		c = video
	case chat.KindDocument:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(content.Ref))
		doc.Caption = content.Caption
		c = doc
	case chat.KindAudio:
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(content.Ref))
		audio.Caption = content.Caption
		c = audio
	default:
		return 0, fmt.Errorf("unsupported content kind %s", content.Kind)
	}

	sent, err := m.api.Send(c)
	if err != nil {
		return 0, fmt.Errorf("failed to send %s: %w", content.Kind, err)
	}
	return sent.MessageID, nil
}

// Forward copies a message into chatID.
func (m *Messenger) Forward(ctx context.Context, chatID int64, from int64, messageID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sent, err := m.api.Send(tgbotapi.NewForward(chatID, from, messageID))
	if err != nil {
		return 0, fmt.Errorf("failed to forward message %d: %w", messageID, err)
	}
	return sent.MessageID, nil
}

// Notice sends a plain text message to chatID.
func (m *Messenger) Notice(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("notice cannot be empty")
	}

	if _, err := m.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send notice: %w", err)
	}
	return nil
}

// Menu sends text to chatID and removes any reply keyboard the chat shows.
func (m *Messenger) Menu(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("menu cannot be empty")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send menu: %w", err)
	}
	return nil
}

// Subscribe starts long polling and returns a channel of core events. The
// channel closes when ctx is done or the update stream ends. Only one
// subscription may exist per messenger.
func (m *Messenger) Subscribe(ctx context.Context) (<-chan chat.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribed {
		return nil, fmt.Errorf("already subscribed")
	}
	m.subscribed = true

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = m.pollTimeout
	updates := m.api.GetUpdatesChan(cfg)

	out := make(chan chat.Event)
	go m.runSubscription(ctx, updates, out)

	return out, nil
}

func (m *Messenger) runSubscription(ctx context.Context, updates tgbotapi.UpdatesChannel, out chan<- chat.Event) {
	defer close(out)
	defer m.stopOnce.Do(m.api.StopReceivingUpdates)

	for {
		select {
		case <-ctx.Done():
			return

		case update, ok := <-updates:
			if !ok {
				return
			}

			ev, ok := ConvertUpdate(update)
			if !ok {
				m.logger.Debug("skipping update", slog.Int("update_id", update.UpdateID))
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
