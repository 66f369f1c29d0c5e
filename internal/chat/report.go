package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joshsymonds/relaybot/internal/metrics"
	"github.com/joshsymonds/relaybot/internal/provenance"
)

// Report is a resolved abuse report.
type Report struct {
	ID       string
	Message  MessageRef
	Reporter int64
	Author   int64
}

// Summary renders the report for the moderator.
func (r *Report) Summary() string {
	text := r.Message.Text
	if text == "" {
		text = mediaContentMarker
	}
	return fmt.Sprintf("🚨 New Report!\n\n"+
		"Report ID: %s\n"+
		"Reporter: %d\n"+
		"Reported User: %d\n"+
		"Message: %s\n"+
		"Message ID: %d", r.ID, r.Reporter, r.Author, text, r.Message.ID)
}

// Reporter resolves reports against the provenance store and hands them to
// the moderator.
type Reporter struct {
	store     ProvenanceStore
	transport Transport
	logger    *slog.Logger
	newID     func() string
	moderator int64
}

// NewReporter creates a reporter delivering to the moderator chat.
func NewReporter(store ProvenanceStore, transport Transport, moderator int64, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		store:     store,
		transport: transport,
		logger:    logger,
		newID:     uuid.NewString,
		moderator: moderator,
	}
}

// Report resolves the author of ref and sends the moderator the original
// message followed by a summary. Both deliveries are attempted even if the
// first fails.
func (r *Reporter) Report(ctx context.Context, reporter int64, ref *MessageRef) (*Report, error) {
	if ref == nil {
		metrics.ReportTotal.WithLabelValues("no_target").Inc()
		return nil, ErrNoReplyTarget
	}

	author, err := r.store.Lookup(provenance.Key{Chat: ref.Chat, MessageID: ref.ID})
	if err != nil {
		metrics.ReportTotal.WithLabelValues("unknown").Inc()
		if errors.Is(err, provenance.ErrNotFound) {
			return nil, ErrUnknownProvenance
		}
		return nil, fmt.Errorf("failed to look up provenance: %w", err)
	}

	rep := &Report{
		ID:       r.newID(),
		Message:  *ref,
		Reporter: reporter,
		Author:   author,
	}

	var errs []error
	if _, err := r.transport.Forward(ctx, r.moderator, ref.Chat, ref.ID); err != nil {
		errs = append(errs, fmt.Errorf("forward original: %w", err))
	}
	if err := r.transport.Notice(ctx, r.moderator, rep.Summary()); err != nil {
		errs = append(errs, fmt.Errorf("send summary: %w", err))
	}
	if len(errs) > 0 {
		metrics.ReportTotal.WithLabelValues("failed").Inc()
		return rep, &ReportError{ReportID: rep.ID, Err: errors.Join(errs...)}
	}

	metrics.ReportTotal.WithLabelValues("ok").Inc()
	r.logger.InfoContext(ctx, "report delivered",
		slog.String("report_id", rep.ID),
		slog.Int64("reporter", reporter),
		slog.Int64("author", author),
		slog.Int("message_id", ref.ID))

	return rep, nil
}
