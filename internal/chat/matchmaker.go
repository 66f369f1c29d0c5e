package chat

import (
	"context"
	"log/slog"

	"github.com/joshsymonds/relaybot/internal/metrics"
	"github.com/joshsymonds/relaybot/internal/session"
)

// Matchmaker moves users between waiting and chatting and tells them about it.
type Matchmaker struct {
	sessions  SessionRegistry
	transport Transport
	logger    *slog.Logger
}

// NewMatchmaker creates a matchmaker. A nil logger uses slog.Default.
func NewMatchmaker(sessions SessionRegistry, transport Transport, logger *slog.Logger) *Matchmaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matchmaker{
		sessions:  sessions,
		transport: transport,
		logger:    logger,
	}
}

// RequestChat pairs user with the oldest waiting user or puts them on the
// waiting list. Notification failures are logged and do not undo the pairing.
func (m *Matchmaker) RequestChat(ctx context.Context, user int64) (session.Request, error) {
	req, err := m.sessions.RequestChat(user)
	if err != nil {
		m.violation(ctx, "request_chat", user, err)
		return session.Request{}, err
	}

	metrics.MatchTotal.WithLabelValues(req.Outcome.String()).Inc()
	m.observe()

	switch req.Outcome {
	case session.Paired:
		m.logger.InfoContext(ctx, "users paired", slog.Int64("user", user), slog.Int64("partner", req.Partner))
		m.notify(ctx, user, msgPartnerFound)
		m.notify(ctx, req.Partner, msgPartnerFound)
	case session.Queued:
		m.logger.DebugContext(ctx, "user waiting for partner", slog.Int64("user", user))
		m.notify(ctx, user, msgSearching)
	case session.AlreadyWaiting:
		m.notify(ctx, user, msgStillSearching)
	case session.AlreadyChatting:
		m.notify(ctx, user, msgAlreadyChatting)
	}

	return req, nil
}

// EndChat ends user's chat or search. Only a partner left behind is notified;
// leaving the waiting list is silent.
func (m *Matchmaker) EndChat(ctx context.Context, user int64) (session.Ended, error) {
	ended, err := m.sessions.EndChat(user)
	if err != nil {
		m.violation(ctx, "end_chat", user, err)
		return session.Ended{}, err
	}

	m.observe()

	if ended.Previous == session.Chatting {
		m.logger.InfoContext(ctx, "chat ended", slog.Int64("user", user), slog.Int64("partner", ended.Partner))
		m.notify(ctx, ended.Partner, msgPartnerLeft)
		m.notify(ctx, user, msgChatEnded)
	}

	return ended, nil
}

func (m *Matchmaker) notify(ctx context.Context, chat int64, text string) {
	if err := m.transport.Notice(ctx, chat, text); err != nil {
		m.logger.WarnContext(ctx, "failed to send notice",
			slog.Int64("chat", chat),
			slog.Any("error", err))
	}
}

func (m *Matchmaker) violation(ctx context.Context, op string, user int64, err error) {
	if !IsConsistencyViolation(err) {
		return
	}
	metrics.ConsistencyViolations.Inc()
	m.logger.ErrorContext(ctx, "INTERNAL CONSISTENCY VIOLATION",
		slog.String("op", op),
		slog.Int64("user", user),
		slog.Any("error", err))
}

func (m *Matchmaker) observe() {
	st := m.sessions.Stats()
	metrics.Sessions.WithLabelValues(session.Waiting.String()).Set(float64(st.Waiting))
	metrics.Sessions.WithLabelValues(session.Chatting.String()).Set(float64(st.Chatting))
}
