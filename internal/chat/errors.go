package chat

import (
	"errors"
	"fmt"

	"github.com/joshsymonds/relaybot/internal/session"
)

// Core errors.
var (
	// ErrNotPaired indicates a relay was attempted without an active chat.
	ErrNotPaired = errors.New("sender has no active chat")

	// ErrUnsupportedContent indicates the message carried no relayable content.
	ErrUnsupportedContent = errors.New("message has no supported content")

	// ErrDeliveryFailed indicates the transport could not deliver relayed content.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrNoReplyTarget indicates a report that does not reply to any message.
	ErrNoReplyTarget = errors.New("report does not reply to a message")

	// ErrUnknownProvenance indicates the reported message was not produced by a relay.
	ErrUnknownProvenance = errors.New("message not found in history")

	// ErrReportDeliveryFailed indicates the transport failed while notifying the moderator.
	ErrReportDeliveryFailed = errors.New("report delivery failed")
)

// DeliveryError is returned when relayed content could not be delivered.
type DeliveryError struct {
	Err       error // Underlying transport error
	Recipient int64
	Kind      Kind
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %s to %d: %v", ErrDeliveryFailed, e.Kind, e.Recipient, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDeliveryFailed.
func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}

// ReportError is returned when a resolved report could not reach the moderator.
type ReportError struct {
	Err      error // Joined transport errors
	ReportID string
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	return fmt.Sprintf("%s: report %s: %v", ErrReportDeliveryFailed, e.ReportID, e.Err)
}

// Unwrap returns the underlying transport errors.
func (e *ReportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrReportDeliveryFailed.
func (e *ReportError) Is(target error) bool {
	return target == ErrReportDeliveryFailed
}

// IsConsistencyViolation reports whether err comes from a broken pairing
// invariant. Such errors indicate a bug and must never be swallowed.
func IsConsistencyViolation(err error) bool {
	return errors.Is(err, session.ErrInconsistent)
}
