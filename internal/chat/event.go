package chat

import "time"

// EventKind identifies what a user asked for.
type EventKind int

// Inbound event kinds.
const (
	EventStart EventKind = iota + 1
	EventRequestChat
	EventEndChat
	EventMessage
	EventReport
)

// String returns the lowercase name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventRequestChat:
		return "request_chat"
	case EventEndChat:
		return "end_chat"
	case EventMessage:
		return "message"
	case EventReport:
		return "report"
	default:
		return "unknown"
	}
}

// User is the platform identity of whoever triggered an event.
type User struct {
	Username  string
	FirstName string
	ID        int64
}

// MessageRef points at an already delivered message.
type MessageRef struct {
	// Text is empty for media messages.
	Text string
	Chat int64
	ID   int
}

// Event is one user action handed to the core by the transport.
type Event struct {
	Received time.Time
	// ReplyTo is the message the user replied to, if any.
	ReplyTo *MessageRef
	User    User
	Message Inbound
	// Chat is where acknowledgements for this event go.
	Chat int64
	Kind EventKind
}

// replyChat returns the chat acknowledgements are sent to.
func (e Event) replyChat() int64 {
	if e.Chat != 0 {
		return e.Chat
	}
	return e.User.ID
}
