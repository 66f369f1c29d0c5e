package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/joshsymonds/relaybot/internal/chat"
)

// Bot commands.
const (
	CommandStart  = "start"
	CommandChat   = "chat"
	CommandStop   = "stop"
	CommandReport = "report"
)

// ConvertUpdate turns an update into a core event. Updates that carry no
// message, no sender, or come from non-private chats are skipped.
func ConvertUpdate(u tgbotapi.Update) (chat.Event, bool) {
	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return chat.Event{}, false
	}
	if !msg.Chat.IsPrivate() {
		return chat.Event{}, false
	}

	ev := chat.Event{
		User: chat.User{
			ID:        msg.From.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
		},
		Chat:     msg.Chat.ID,
		Received: msg.Time(),
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case CommandStart:
			ev.Kind = chat.EventStart
			return ev, true
		case CommandChat:
			ev.Kind = chat.EventRequestChat
			return ev, true
		case CommandStop:
			ev.Kind = chat.EventEndChat
			return ev, true
		case CommandReport:
			ev.Kind = chat.EventReport
			ev.ReplyTo = messageRef(msg.ReplyToMessage)
			return ev, true
		}
	}

	ev.Kind = chat.EventMessage
	ev.Message = inbound(msg)
	return ev, true
}

func inbound(msg *tgbotapi.Message) chat.Inbound {
	in := chat.Inbound{
		Text:    msg.Text,
		Caption: msg.Caption,
	}
	// Sizes are listed smallest first.
	if n := len(msg.Photo); n > 0 {
		in.Photo = msg.Photo[n-1].FileID
	}
	if msg.Video != nil {
		in.Video = msg.Video.FileID
	}
	if msg.Document != nil {
		in.Document = msg.Document.FileID
	}
	if msg.Audio != nil {
		in.Audio = msg.Audio.FileID
	}
	return in
}

func messageRef(msg *tgbotapi.Message) *chat.MessageRef {
	if msg == nil || msg.Chat == nil {
		return nil
	}
	return &chat.MessageRef{
		Chat: msg.Chat.ID,
		ID:   msg.MessageID,
		Text: msg.Text,
	}
}
