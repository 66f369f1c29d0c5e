package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/relaybot/internal/chat"
	"github.com/joshsymonds/relaybot/internal/mocks"
	"github.com/joshsymonds/relaybot/internal/provenance"
	"github.com/joshsymonds/relaybot/internal/session"
)

const (
	alice   int64 = 11
	bob     int64 = 22
	charlie int64 = 33
)

func TestNewService_Validation(t *testing.T) {
	f := newFixture()

	_, err := chat.NewService(nil, f.store, f.transport, moderator)
	assert.EqualError(t, err, "session registry is required")
	_, err = chat.NewService(f.sessions, nil, f.transport, moderator)
	assert.EqualError(t, err, "provenance store is required")
	_, err = chat.NewService(f.sessions, f.store, nil, moderator)
	assert.EqualError(t, err, "transport is required")
	_, err = chat.NewService(f.sessions, f.store, f.transport, 0)
	assert.EqualError(t, err, "moderator chat is required")
}

func TestService_Scenario(t *testing.T) {
	f := newFixture()
	svc := f.service(t)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, mocks.NewEventBuilder(chat.EventRequestChat, alice).Build()))
	assert.Equal(t, session.Waiting, f.sessions.State(alice))

	require.NoError(t, svc.Handle(ctx, mocks.NewEventBuilder(chat.EventRequestChat, bob).Build()))
	assert.Equal(t, session.Chatting, f.sessions.State(alice))
	assert.Equal(t, session.Chatting, f.sessions.State(bob))

	require.NoError(t, svc.Handle(ctx, mocks.NewEventBuilder(chat.EventMessage, alice).WithText("hi").Build()))

	sent := f.transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, bob, sent[0].Chat)
	assert.Equal(t, "hi", sent[0].Content.Ref, "plain text is not prefixed")
	delivered := sent[0].MessageID

	author, err := f.store.Lookup(provenance.Key{Chat: bob, MessageID: delivered})
	require.NoError(t, err)
	assert.Equal(t, alice, author)

	// Charlie cannot see Bob's chat; a reference into his own chat is unknown.
	f.transport.Reset()
	require.NoError(t, svc.Handle(ctx, mocks.NewEventBuilder(chat.EventReport, charlie).
		WithReplyTo(charlie, delivered, "hi").Build()))
	assert.Equal(t, []string{"❌ Message not found in history"}, f.transport.NoticesTo(charlie))
	assert.Empty(t, f.transport.NoticesTo(moderator))
	assert.Empty(t, f.transport.Forwards())

	// Bob reporting the message he received resolves to Alice.
	f.transport.Reset()
	require.NoError(t, svc.Handle(ctx, mocks.NewEventBuilder(chat.EventReport, bob).
		WithReplyTo(bob, delivered, "hi").Build()))
	assert.Len(t, f.transport.Forwards(), 1)
	moderatorNotices := f.transport.NoticesTo(moderator)
	require.Len(t, moderatorNotices, 1)
	assert.Contains(t, moderatorNotices[0], "Reported User: 11")
	assert.Contains(t, moderatorNotices[0], "Reporter: 22")
	assert.Equal(t, []string{"✅ Report sent to admin!"}, f.transport.NoticesTo(bob))

	// Ending the chat frees both users.
	require.NoError(t, svc.Handle(ctx, mocks.NewEventBuilder(chat.EventEndChat, bob).Build()))
	assert.Equal(t, session.Idle, f.sessions.State(alice))
	assert.Equal(t, session.Idle, f.sessions.State(bob))
}

func TestService_MessageAcks(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		event   chat.Event
		wantAck string
	}{
		{
			name:    "not paired",
			setup:   func(*fixture) {},
			event:   mocks.NewEventBuilder(chat.EventMessage, alice).WithText("hi").Build(),
			wantAck: "⚠️ Start a chat with /chat first",
		},
		{
			name: "delivery failed",
			setup: func(f *fixture) {
				_, _ = f.sessions.RequestChat(alice)
				_, _ = f.sessions.RequestChat(bob)
				f.transport.SetSendError(errors.New("blocked"))
			},
			event:   mocks.NewEventBuilder(chat.EventMessage, alice).WithPhoto("p", "c").Build(),
			wantAck: "❌ Failed to send message",
		},
		{
			name: "unsupported",
			setup: func(f *fixture) {
				_, _ = f.sessions.RequestChat(alice)
				_, _ = f.sessions.RequestChat(bob)
			},
			event:   mocks.NewEventBuilder(chat.EventMessage, alice).Build(),
			wantAck: "⚠️ This type of message can't be sent",
		},
		{
			name: "waiting user is still searching",
			setup: func(f *fixture) {
				_, _ = f.sessions.RequestChat(alice)
			},
			event:   mocks.NewEventBuilder(chat.EventMessage, alice).WithText("anyone?").Build(),
			wantAck: "⏳ Still searching for a partner. Use /stop to cancel.",
		},
		{
			name: "waiting user sending media",
			setup: func(f *fixture) {
				_, _ = f.sessions.RequestChat(alice)
			},
			event:   mocks.NewEventBuilder(chat.EventMessage, alice).WithPhoto("p", "c").Build(),
			wantAck: "⏳ Still searching for a partner. Use /stop to cancel.",
		},
		{
			name:    "report without reply",
			setup:   func(*fixture) {},
			event:   mocks.NewEventBuilder(chat.EventReport, alice).Build(),
			wantAck: "⚠️ Reply to a message to report it!",
		},
		{
			name: "report delivery failed",
			setup: func(f *fixture) {
				f.store.Record(provenance.Key{Chat: alice, MessageID: 5}, bob)
				f.transport.SetForwardError(errors.New("forbidden"))
			},
			event:   mocks.NewEventBuilder(chat.EventReport, alice).WithReplyTo(alice, 5, "").Build(),
			wantAck: "❌ Failed to send report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)
			svc := f.service(t)

			require.NoError(t, svc.Handle(context.Background(), tt.event))
			assert.Equal(t, []string{tt.wantAck}, f.transport.NoticesTo(alice))
		})
	}
}

func TestService_Start(t *testing.T) {
	f := newFixture()
	svc := f.service(t)

	ev := mocks.NewEventBuilder(chat.EventStart, alice).WithUsername("alice").Build()
	require.NoError(t, svc.Handle(context.Background(), ev))

	assert.Equal(t, []string{"🚀 New user started bot: 11 (@alice)"}, f.transport.NoticesTo(moderator))
	menu := f.transport.NoticesTo(alice)
	require.Len(t, menu, 1)
	assert.Contains(t, menu[0], "/chat - Find partner")
	for _, n := range f.transport.Notices() {
		assert.Equal(t, n.Chat == alice, n.Menu, "only the user's welcome is a menu")
	}
	assert.Contains(t, menu[0], "/report - Report message")
	assert.Equal(t, session.Idle, f.sessions.State(alice))
}

func TestService_StartWithoutUsername(t *testing.T) {
	f := newFixture()
	svc := f.service(t)

	require.NoError(t, svc.Handle(context.Background(), mocks.NewEventBuilder(chat.EventStart, alice).Build()))
	assert.Equal(t, []string{"🚀 New user started bot: 11 (no username)"}, f.transport.NoticesTo(moderator))
}

func TestService_UnknownEvent(t *testing.T) {
	f := newFixture()
	svc := f.service(t)

	err := svc.Handle(context.Background(), chat.Event{Kind: chat.EventKind(99), User: chat.User{ID: alice}})
	assert.Error(t, err)
}

func TestService_ConsistencyViolationSurfaces(t *testing.T) {
	f := newFixture()
	svc, err := chat.NewService(brokenRegistry{f.sessions}, f.store, f.transport, moderator,
		chat.WithLogger(discardLogger()))
	require.NoError(t, err)

	err = svc.Handle(context.Background(), mocks.NewEventBuilder(chat.EventRequestChat, alice).Build())
	require.Error(t, err)
	assert.True(t, chat.IsConsistencyViolation(err))
	assert.Len(t, f.transport.NoticesTo(alice), 1)
}

func TestService_WaitingMediaIsNotRelayed(t *testing.T) {
	f := newFixture()
	svc := f.service(t)
	_, err := f.sessions.RequestChat(alice)
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(),
		mocks.NewEventBuilder(chat.EventMessage, alice).WithPhoto("p", "").Build()))

	assert.Empty(t, f.transport.Sent())
	assert.Equal(t, session.Waiting, f.sessions.State(alice))
	assert.Equal(t, session.Stats{Waiting: 1}, f.sessions.Stats())
}

// oneSidedRegistry reports a broken pairing whenever a partner is looked up.
type oneSidedRegistry struct {
	*session.Registry
}

func (oneSidedRegistry) Partner(user int64) (int64, error) {
	return 0, &session.ConsistencyError{User: user, Detail: "partner reference is one-sided"}
}

func TestService_OneSidedPartnerOnRelaySurfaces(t *testing.T) {
	f := newFixture()
	svc, err := chat.NewService(oneSidedRegistry{f.sessions}, f.store, f.transport, moderator,
		chat.WithLogger(discardLogger()))
	require.NoError(t, err)

	err = svc.Handle(context.Background(), mocks.NewEventBuilder(chat.EventMessage, alice).WithText("hi").Build())
	require.Error(t, err)
	assert.True(t, chat.IsConsistencyViolation(err))
	assert.Empty(t, f.transport.Sent())
	assert.Equal(t, []string{"⚠️ Something went wrong. Please try /stop and /chat again."}, f.transport.NoticesTo(alice))
}
