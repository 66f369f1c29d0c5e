package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshsymonds/relaybot/internal/metrics"
	"github.com/joshsymonds/relaybot/internal/session"
)

// Service turns inbound events into core operations and answers the user.
type Service struct {
	transport  Transport
	sessions   SessionRegistry
	onboarding *Onboarding
	matchmaker *Matchmaker
	relay      *Relay
	reporter   *Reporter
	logger     *slog.Logger
	prefix     string
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAnonymousPrefix sets the marker prepended to relayed captions.
func WithAnonymousPrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

// NewService wires the core components around one transport. moderator is
// the chat receiving onboarding notices and reports.
func NewService(
	sessions SessionRegistry,
	store ProvenanceStore,
	transport Transport,
	moderator int64,
	opts ...Option,
) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("provenance store is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if moderator == 0 {
		return nil, fmt.Errorf("moderator chat is required")
	}

	s := &Service{
		transport: transport,
		sessions:  sessions,
		logger:    slog.Default(),
		prefix:    defaultAnonPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.onboarding = NewOnboarding(transport, moderator)
	s.matchmaker = NewMatchmaker(sessions, transport, s.logger)
	s.relay = NewRelay(sessions, store, transport, s.prefix, s.logger)
	s.reporter = NewReporter(store, transport, moderator, s.logger)

	return s, nil
}

// Handle processes one event. User-level failures are answered and logged
// here; only internal consistency violations and malformed events are
// returned.
func (s *Service) Handle(ctx context.Context, ev Event) error {
	start := time.Now()
	defer func() {
		metrics.EventDuration.WithLabelValues(ev.Kind.String()).Observe(time.Since(start).Seconds())
	}()

	s.logger.DebugContext(ctx, "handling event",
		slog.String("event", ev.Kind.String()),
		slog.Int64("user", ev.User.ID))

	switch ev.Kind {
	case EventStart:
		if err := s.onboarding.Start(ctx, ev.User, ev.replyChat()); err != nil {
			s.logger.WarnContext(ctx, "onboarding incomplete",
				slog.Int64("user", ev.User.ID),
				slog.Any("error", err))
		}
		return nil

	case EventRequestChat:
		return s.requestChat(ctx, ev)

	case EventEndChat:
		if _, err := s.matchmaker.EndChat(ctx, ev.User.ID); err != nil {
			s.ack(ctx, ev, msgInternalError)
			return err
		}
		return nil

	case EventMessage:
		return s.message(ctx, ev)

	case EventReport:
		s.report(ctx, ev)
		return nil

	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

func (s *Service) requestChat(ctx context.Context, ev Event) error {
	if _, err := s.matchmaker.RequestChat(ctx, ev.User.ID); err != nil {
		s.ack(ctx, ev, msgInternalError)
		return err
	}
	return nil
}

func (s *Service) message(ctx context.Context, ev Event) error {
	// A waiting user typing is another nudge to find a partner. Media while
	// waiting only gets the searching notice.
	if s.sessions.State(ev.User.ID) == session.Waiting {
		if content, ok := ev.Message.Content(); ok && content.Kind == KindText {
			return s.requestChat(ctx, ev)
		}
		s.ack(ctx, ev, msgStillSearching)
		return nil
	}

	_, err := s.relay.Relay(ctx, ev.User.ID, ev.Message)
	switch {
	case err == nil:
	case IsConsistencyViolation(err):
		s.ack(ctx, ev, msgInternalError)
		return err
	case errors.Is(err, ErrNotPaired):
		s.ack(ctx, ev, msgNotPaired)
	case errors.Is(err, ErrUnsupportedContent):
		s.ack(ctx, ev, msgUnsupported)
	case errors.Is(err, ErrDeliveryFailed):
		s.logger.ErrorContext(ctx, "forward error",
			slog.Int64("user", ev.User.ID),
			slog.Any("error", err))
		s.ack(ctx, ev, msgDeliveryFailed)
	default:
		s.logger.ErrorContext(ctx, "relay failed",
			slog.Int64("user", ev.User.ID),
			slog.Any("error", err))
		s.ack(ctx, ev, msgDeliveryFailed)
	}
	return nil
}

func (s *Service) report(ctx context.Context, ev Event) {
	_, err := s.reporter.Report(ctx, ev.User.ID, ev.ReplyTo)
	switch {
	case err == nil:
		s.ack(ctx, ev, msgReportSent)
	case errors.Is(err, ErrNoReplyTarget):
		s.ack(ctx, ev, msgNoReplyTarget)
	case errors.Is(err, ErrUnknownProvenance):
		s.ack(ctx, ev, msgUnknownMessage)
	default:
		s.logger.ErrorContext(ctx, "report failed",
			slog.Int64("reporter", ev.User.ID),
			slog.Any("error", err))
		s.ack(ctx, ev, msgReportFailed)
	}
}

func (s *Service) ack(ctx context.Context, ev Event, text string) {
	if err := s.transport.Notice(ctx, ev.replyChat(), text); err != nil {
		s.logger.WarnContext(ctx, "failed to acknowledge event",
			slog.String("event", ev.Kind.String()),
			slog.Int64("user", ev.User.ID),
			slog.Any("error", err))
	}
}
