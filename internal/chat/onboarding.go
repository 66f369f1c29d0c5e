package chat

import (
	"context"
	"errors"
	"fmt"
)

// Onboarding greets users and tells the moderator about them.
type Onboarding struct {
	transport Transport
	moderator int64
}

// NewOnboarding creates an onboarding notifier.
func NewOnboarding(transport Transport, moderator int64) *Onboarding {
	return &Onboarding{transport: transport, moderator: moderator}
}

// Start notifies the moderator about user and sends the command menu to chat.
func (o *Onboarding) Start(ctx context.Context, user User, chat int64) error {
	var errs []error
	if err := o.transport.Notice(ctx, o.moderator, newUserNotice(user)); err != nil {
		errs = append(errs, fmt.Errorf("notify moderator: %w", err))
	}
	if err := o.transport.Menu(ctx, chat, welcomeText(user.FirstName)); err != nil {
		errs = append(errs, fmt.Errorf("send menu: %w", err))
	}
	return errors.Join(errs...)
}
