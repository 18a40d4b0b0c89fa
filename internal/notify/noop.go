package notify

import (
	"context"

	"band-trading-bot/internal/interfaces"
)

// Noop is used when no notifier is configured.
type Noop struct{}

var _ interfaces.Notifier = (*Noop)(nil)

func NewNoop() *Noop { return &Noop{} }

func (*Noop) SendMessage(ctx context.Context, text string) error          { return nil }
func (*Noop) SendDocument(ctx context.Context, path, caption string) error { return nil }
