package mocks

import (
	"time"

	"github.com/joshsymonds/relaybot/internal/chat"
)

// EventBuilder provides a fluent interface for building test events.
type EventBuilder struct {
	ev chat.Event
}

// NewEventBuilder starts an event of kind from user. The reply chat is the
// user's own private chat.
func NewEventBuilder(kind chat.EventKind, user int64) *EventBuilder {
	return &EventBuilder{ev: chat.Event{
		Kind:     kind,
		User:     chat.User{ID: user, FirstName: "Test"},
		Chat:     user,
		Received: time.Now(),
	}}
}

// WithUsername sets the sender's username.
func (b *EventBuilder) WithUsername(username string) *EventBuilder {
	b.ev.User.Username = username
	return b
}

// WithText sets a text body.
func (b *EventBuilder) WithText(text string) *EventBuilder {
	b.ev.Message.Text = text
	return b
}

// WithPhoto sets a photo reference and caption.
func (b *EventBuilder) WithPhoto(ref, caption string) *EventBuilder {
	b.ev.Message.Photo = ref
	b.ev.Message.Caption = caption
	return b
}

// WithReplyTo sets the message the event replies to.
func (b *EventBuilder) WithReplyTo(chatID int64, messageID int, text string) *EventBuilder {
	b.ev.ReplyTo = &chat.MessageRef{Chat: chatID, ID: messageID, Text: text}
	return b
}

// Build returns the event.
func (b *EventBuilder) Build() chat.Event {
	return b.ev
}
