package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/astrxnomo/agendaun/pkg/jobs"
)

type taskSubmitter interface {
	Submit(t jobs.Task) error
}

// QueuedLinkSender hands delivery to a background dispatcher so sign-in
// requests do not wait on the mail transport. When the dispatcher is saturated
// the link is delivered inline.
type QueuedLinkSender struct {
	next   LinkSender
	queue  taskSubmitter
	logger *zap.Logger
}

// NewQueuedLinkSender wraps next with queue.
func NewQueuedLinkSender(next LinkSender, queue taskSubmitter, logger *zap.Logger) *QueuedLinkSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuedLinkSender{next: next, queue: queue, logger: logger}
}

// SendMagicLink implements LinkSender.
func (s *QueuedLinkSender) SendMagicLink(ctx context.Context, email, link string, expiresAt time.Time) error {
	err := s.queue.Submit(jobs.Task{
		Kind: "magic_link",
		Key:  email,
		Run: func(ctx context.Context) error {
			return s.next.SendMagicLink(ctx, email, link, expiresAt)
		},
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, jobs.ErrFull) || errors.Is(err, jobs.ErrStopped) {
		s.logger.Warn("link dispatcher unavailable, sending inline", zap.Error(err))
		return s.next.SendMagicLink(ctx, email, link, expiresAt)
	}
	return err
}
