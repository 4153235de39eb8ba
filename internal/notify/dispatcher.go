package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/internal/apperr"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/metrics"
)

var (
	ErrQueueFull        = apperr.New(apperr.KindTransient, "QUEUE_FULL", "verification queue is full")
	ErrDispatcherClosed = apperr.New(apperr.KindTransient, "DISPATCHER_CLOSED", "verification dispatcher is closed")
)

const deliveryTimeout = 30 * time.Second

// Dispatcher delivers verification emails in-process through a bounded
// buffer and a fixed pool of workers. SendVerification never blocks.
type Dispatcher struct {
	mailer  Mailer
	baseURL string
	jobs    chan auth.VerificationEmail

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ auth.VerificationSender = (*Dispatcher)(nil)

// NewDispatcher starts workers goroutines; Close stops them.
func NewDispatcher(mailer Mailer, baseURL string, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 64
	}
	d := &Dispatcher{
		mailer:  mailer,
		baseURL: baseURL,
		jobs:    make(chan auth.VerificationEmail, buffer),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) SendVerification(_ context.Context, msg auth.VerificationEmail) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting work, delivers what is buffered and waits for the
// workers to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		err := deliver(ctx, d.mailer, d.baseURL, msg)
		cancel()
		if err != nil {
			metrics.VerificationEmails.WithLabelValues("send_failed").Inc()
			log.Warnf("Verification email for user %d failed: %v", msg.UserID, err)
			continue
		}
		metrics.VerificationEmails.WithLabelValues("sent").Inc()
		log.Infof("Verification email sent to user %d", msg.UserID)
	}
}
