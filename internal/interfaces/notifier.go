package interfaces

import "context"

// Notifier delivers human-facing messages. Fire-and-forget: callers
// log failures and move on.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
	SendDocument(ctx context.Context, path, caption string) error
}
