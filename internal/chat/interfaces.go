// Package chat implements the anonymous chat core: matchmaking, relaying
// content between partners and resolving reports for a moderator.
package chat

import (
	"context"

	"github.com/joshsymonds/relaybot/internal/provenance"
	"github.com/joshsymonds/relaybot/internal/session"
)

// Transport is the outbound capability of the messaging platform. Chat IDs
// and message IDs are the platform's own.
type Transport interface {
	// Send delivers content to chat and returns the ID of the delivered message
	Send(ctx context.Context, chat int64, content Content) (int, error)

	// Forward copies message messageID of chat from into chat and returns the
	// ID of the delivered copy
	Forward(ctx context.Context, chat int64, from int64, messageID int) (int, error)

	// Notice sends a plain system text to chat
	Notice(ctx context.Context, chat int64, text string) error

	// Menu sends the command menu to chat and removes any custom keyboard
	Menu(ctx context.Context, chat int64, text string) error
}

// SessionRegistry holds pairing state. Each method is atomic.
type SessionRegistry interface {
	RequestChat(user int64) (session.Request, error)
	EndChat(user int64) (session.Ended, error)
	Partner(user int64) (int64, error)
	State(user int64) session.State
	Stats() session.Stats
}

// ProvenanceStore maps delivered messages back to their authors.
type ProvenanceStore interface {
	Record(key provenance.Key, author int64)
	Lookup(key provenance.Key) (int64, error)
	Len() int
}
