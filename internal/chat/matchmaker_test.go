package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/relaybot/internal/chat"
	"github.com/joshsymonds/relaybot/internal/session"
)

func TestMatchmaker_RequestChat(t *testing.T) {
	f := newFixture()
	m := chat.NewMatchmaker(f.sessions, f.transport, discardLogger())
	ctx := context.Background()

	req, err := m.RequestChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.Queued, req.Outcome)
	assert.Equal(t, session.Waiting, f.sessions.State(1))
	assert.Len(t, f.transport.NoticesTo(1), 1)

	req, err = m.RequestChat(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, session.Paired, req.Outcome)
	assert.Equal(t, int64(1), req.Partner)

	// Both sides hear about the match.
	assert.Len(t, f.transport.NoticesTo(1), 2)
	assert.Len(t, f.transport.NoticesTo(2), 1)

	p, err := f.sessions.Partner(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p)
	p, err = f.sessions.Partner(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p)
}

func TestMatchmaker_RequestChat_AlreadyChattingIsNoop(t *testing.T) {
	f := newFixture()
	f.pair(t, 1, 2)
	m := chat.NewMatchmaker(f.sessions, f.transport, discardLogger())

	req, err := m.RequestChat(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, session.AlreadyChatting, req.Outcome)

	p, err := f.sessions.Partner(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p)
	assert.Empty(t, f.transport.NoticesTo(2))
}

func TestMatchmaker_NotificationFailureKeepsPairing(t *testing.T) {
	f := newFixture()
	m := chat.NewMatchmaker(f.sessions, f.transport, discardLogger())
	ctx := context.Background()

	_, err := m.RequestChat(ctx, 1)
	require.NoError(t, err)

	f.transport.SetNoticeError(errors.New("network down"))
	req, err := m.RequestChat(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, session.Paired, req.Outcome)
	assert.Equal(t, session.Chatting, f.sessions.State(1))
}

func TestMatchmaker_EndChat(t *testing.T) {
	t.Run("chatting notifies partner", func(t *testing.T) {
		f := newFixture()
		f.pair(t, 1, 2)
		m := chat.NewMatchmaker(f.sessions, f.transport, discardLogger())

		ended, err := m.EndChat(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, session.Chatting, ended.Previous)
		assert.Equal(t, int64(2), ended.Partner)

		assert.Equal(t, session.Idle, f.sessions.State(1))
		assert.Equal(t, session.Idle, f.sessions.State(2))
		assert.Len(t, f.transport.NoticesTo(2), 1)
	})

	t.Run("waiting is silent", func(t *testing.T) {
		f := newFixture()
		_, _ = f.sessions.RequestChat(1)
		m := chat.NewMatchmaker(f.sessions, f.transport, discardLogger())

		ended, err := m.EndChat(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, session.Waiting, ended.Previous)
		assert.Equal(t, session.Idle, f.sessions.State(1))
		assert.Zero(t, f.transport.Calls())
	})

	t.Run("idle is a no-op", func(t *testing.T) {
		f := newFixture()
		m := chat.NewMatchmaker(f.sessions, f.transport, discardLogger())

		ended, err := m.EndChat(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, session.Idle, ended.Previous)
		assert.Zero(t, f.transport.Calls())
	})
}

// brokenRegistry always reports a consistency violation.
type brokenRegistry struct {
	*session.Registry
}

func (brokenRegistry) RequestChat(user int64) (session.Request, error) {
	return session.Request{}, &session.ConsistencyError{User: user, Detail: "test"}
}

func TestMatchmaker_ConsistencyViolationIsReturned(t *testing.T) {
	f := newFixture()
	m := chat.NewMatchmaker(brokenRegistry{f.sessions}, f.transport, discardLogger())

	_, err := m.RequestChat(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, chat.IsConsistencyViolation(err))
	assert.Zero(t, f.transport.Calls())
}
