package chat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joshsymonds/relaybot/internal/metrics"
	"github.com/joshsymonds/relaybot/internal/provenance"
	"github.com/joshsymonds/relaybot/internal/session"
)

// Relay forwards content between partners without revealing the sender and
// records where every delivered copy came from.
type Relay struct {
	sessions  SessionRegistry
	store     ProvenanceStore
	transport Transport
	logger    *slog.Logger
	prefix    string
}

// NewRelay creates a relay. Captions are prefixed with prefix; an empty
// prefix uses the default marker.
func NewRelay(sessions SessionRegistry, store ProvenanceStore, transport Transport, prefix string, logger *slog.Logger) *Relay {
	if prefix == "" {
		prefix = defaultAnonPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		sessions:  sessions,
		store:     store,
		transport: transport,
		logger:    logger,
		prefix:    prefix,
	}
}

// Relay delivers in to sender's partner and returns the delivered message ID.
// Provenance is recorded before Relay returns.
func (r *Relay) Relay(ctx context.Context, sender int64, in Inbound) (int, error) {
	partner, err := r.sessions.Partner(sender)
	switch {
	case errors.Is(err, session.ErrNotChatting):
		metrics.RelayTotal.WithLabelValues("none", "not_paired").Inc()
		return 0, ErrNotPaired
	case err != nil:
		metrics.RelayTotal.WithLabelValues("none", "inconsistent").Inc()
		metrics.ConsistencyViolations.Inc()
		r.logger.ErrorContext(ctx, "INTERNAL CONSISTENCY VIOLATION",
			slog.String("op", "relay"),
			slog.Int64("user", sender),
			slog.Any("error", err))
		return 0, err
	}

	content, ok := in.Content()
	if !ok {
		metrics.RelayTotal.WithLabelValues("none", "unsupported").Inc()
		return 0, ErrUnsupportedContent
	}
	content = r.anonymize(content)

	delivered, err := r.transport.Send(ctx, partner, content)
	if err != nil {
		metrics.RelayTotal.WithLabelValues(content.Kind.String(), "failed").Inc()
		return 0, &DeliveryError{Recipient: partner, Kind: content.Kind, Err: err}
	}

	r.store.Record(provenance.Key{Chat: partner, MessageID: delivered}, sender)
	metrics.RelayTotal.WithLabelValues(content.Kind.String(), "ok").Inc()
	metrics.ProvenanceRecords.Set(float64(r.store.Len()))

	r.logger.DebugContext(ctx, "relayed message",
		slog.String("kind", content.Kind.String()),
		slog.Int64("recipient", partner),
		slog.Int("message_id", delivered))

	return delivered, nil
}

// anonymize marks the caption as anonymous. Text bodies pass through as-is.
func (r *Relay) anonymize(c Content) Content {
	if c.Caption != "" {
		c.Caption = r.prefix + c.Caption
	}
	return c
}
