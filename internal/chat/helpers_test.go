package chat_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/relaybot/internal/chat"
	"github.com/joshsymonds/relaybot/internal/mocks"
	"github.com/joshsymonds/relaybot/internal/provenance"
	"github.com/joshsymonds/relaybot/internal/session"
)

const moderator int64 = 9000

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture bundles real stores with a recording transport.
type fixture struct {
	sessions  *session.Registry
	store     *provenance.Store
	transport *mocks.MockTransport
}

func newFixture() *fixture {
	return &fixture{
		sessions:  session.NewRegistry(),
		store:     provenance.NewStore(),
		transport: mocks.NewMockTransport(),
	}
}

// pair puts a and b in a chat with each other and forgets the notices.
func (f *fixture) pair(t *testing.T, a, b int64) {
	t.Helper()
	_, err := f.sessions.RequestChat(a)
	require.NoError(t, err)
	req, err := f.sessions.RequestChat(b)
	require.NoError(t, err)
	require.Equal(t, session.Paired, req.Outcome)
}

func (f *fixture) service(t *testing.T) *chat.Service {
	t.Helper()
	svc, err := chat.NewService(f.sessions, f.store, f.transport, moderator, chat.WithLogger(discardLogger()))
	require.NoError(t, err)
	return svc
}
