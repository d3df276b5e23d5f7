package notify

import (
	"context"

	"go.uber.org/zap"
)

const maxMessageLen = 4000

// Sender is the slice of the telegram client the notifier needs.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextWithKeyboard(ctx context.Context, chatID int64, text string, keyboard interface{}) error
}

// Notifier fans messages out to admins on a best-effort basis: a failed
// delivery to one recipient is logged and never blocks the others or the
// operation that triggered it.
type Notifier struct {
	sender Sender
	logger *zap.Logger
}

func New(sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

// Broadcast sends text to every recipient, skipping failures.
func (n *Notifier) Broadcast(ctx context.Context, recipients []int64, text string) {
	text = truncate(text)
	for _, id := range recipients {
		if err := n.sender.SendText(ctx, id, text); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.Int64("recipient_id", id),
				zap.Error(err))
		}
	}
}

// BroadcastKeyboard is Broadcast with an inline keyboard attached, used for
// review prompts on new submissions.
func (n *Notifier) BroadcastKeyboard(ctx context.Context, recipients []int64, text string, keyboard interface{}) {
	text = truncate(text)
	for _, id := range recipients {
		if err := n.sender.SendTextWithKeyboard(ctx, id, text, keyboard); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.Int64("recipient_id", id),
				zap.Error(err))
		}
	}
}

// NotifyUser sends a single message, swallowing the error. Used for submitter
// decision notices where the outcome must not depend on deliverability.
func (n *Notifier) NotifyUser(ctx context.Context, userID int64, text string) {
	if err := n.sender.SendText(ctx, userID, truncate(text)); err != nil {
		n.logger.Warn("user notification failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

func truncate(text string) string {
	if len(text) <= maxMessageLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxMessageLen {
		return text
	}
	return string(runes[:maxMessageLen]) + "…"
}
