package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/internal/metrics"
)

const (
	defaultPollTimeout = 5 * time.Second
	errorBackoff       = time.Second
)

// Worker drains a Queue and delivers each message through a Mailer.
type Worker struct {
	queue       Queue
	mailer      Mailer
	baseURL     string
	pollTimeout time.Duration
	clock       clockwork.Clock
}

func NewWorker(queue Queue, mailer Mailer, baseURL string, clock clockwork.Clock) *Worker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Worker{
		queue:       queue,
		mailer:      mailer,
		baseURL:     baseURL,
		pollTimeout: defaultPollTimeout,
		clock:       clock,
	}
}

// Run processes messages until ctx is cancelled. A failed delivery is logged
// and dropped; the user can request a resend.
func (w *Worker) Run(ctx context.Context) error {
	log.Info("Verification mail worker starting...")
	for {
		if err := ctx.Err(); err != nil {
			log.Info("Verification mail worker stopped")
			return nil
		}

		if _, err := w.ProcessOne(ctx); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				continue
			}
			log.Warnf("Verification queue: %v", err)
			select {
			case <-ctx.Done():
			case <-w.clock.After(errorBackoff):
			}
		}
	}
}

// ProcessOne pops at most one message and delivers it. It reports whether a
// message was taken from the queue; delivery failures are not returned.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	msg, err := w.queue.Pop(ctx, w.pollTimeout)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	if err := deliver(ctx, w.mailer, w.baseURL, *msg); err != nil {
		metrics.VerificationEmails.WithLabelValues("send_failed").Inc()
		log.Warnf("Verification email for user %d failed: %v", msg.UserID, err)
		return true, nil
	}
	metrics.VerificationEmails.WithLabelValues("sent").Inc()
	log.Infof("Verification email sent to user %d", msg.UserID)
	return true, nil
}
