// Package notify delivers event emails (confirmed shifts, time-off
// responses, emergency requests) off the request path.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
)

const sendTimeout = 15 * time.Second

// Notifier hands a message off for asynchronous delivery. Delivery
// failures are logged and never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, msg mail.Message)
	Close() error
}

// ── direct delivery ──

// DirectNotifier sends each message from its own goroutine.
type DirectNotifier struct {
	sender mail.Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewDirectNotifier creates a DirectNotifier.
func NewDirectNotifier(sender mail.Sender, logger *zap.Logger) *DirectNotifier {
	return &DirectNotifier{sender: sender, logger: logger}
}

// Notify returns immediately; the request context is not used for the
// send because the request usually finishes first.
func (n *DirectNotifier) Notify(_ context.Context, msg mail.Message) {
	if len(msg.To) == 0 {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.sender.Send(ctx, msg); err != nil {
			n.logger.Warn("notification email failed",
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}()
}

// Close waits for in-flight sends.
func (n *DirectNotifier) Close() error {
	n.wg.Wait()
	return nil
}
