// Package notify delivers order confirmations in the background.
//
// Placing an order never waits on delivery: the order service hands a
// Notification to the Queue and moves on. Workers drain the queue, pace
// deliveries per recipient, and pass each notification to a Sender.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pagebound/bookstore-server/internal/logger"
	"github.com/pagebound/bookstore-server/internal/ratelimit"
)

// ErrQueueClosed is returned by Shutdown when called twice.
var ErrQueueClosed = errors.New("notify: queue closed")

// Notification is an order confirmation for one recipient.
type Notification struct {
	Email     string
	OrderID   string
	Total     decimal.Decimal
	ItemCount int
	PlacedAt  time.Time
}

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes confirmations to the log instead of a mail server.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(l *slog.Logger) *LogSender {
	return &LogSender{logger: logger.OrDiscard(l)}
}

// Send logs the confirmation.
func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.logger.Info("order confirmation sent",
		slog.String("to", n.Email),
		slog.String("order_id", n.OrderID),
		slog.String("total", n.Total.StringFixed(2)),
		slog.Int("items", n.ItemCount),
	)
	return nil
}

// Config tunes a Queue.
type Config struct {
	QueueSize             int
	Workers               int
	PerRecipientPerMinute int
}

// Stats counts what happened to enqueued notifications.
type Stats struct {
	Sent    int64
	Failed  int64
	Dropped int64
}

// Queue is a bounded, multi-worker notification queue.
type Queue struct {
	sender  Sender
	limiter *ratelimit.KeyedRateLimiter
	jobs    chan Notification
	workers int
	logger  *slog.Logger
	wg      sync.WaitGroup

	// cancel aborts in-flight pacing and sends once a shutdown deadline passes.
	ctx    context.Context
	cancel context.CancelFunc

	closedMu sync.RWMutex
	closed   bool

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewQueue creates a queue. Call Start to begin delivering.
func NewQueue(sender Sender, cfg Config, l *slog.Logger) *Queue {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PerRecipientPerMinute < 1 {
		cfg.PerRecipientPerMinute = 1
	}

	return &Queue{
		sender:  sender,
		limiter: ratelimit.New(ratelimit.PerMinute(cfg.PerRecipientPerMinute), cfg.PerRecipientPerMinute),
		jobs:    make(chan Notification, cfg.QueueSize),
		workers: cfg.Workers,
		logger:  logger.OrDiscard(l),
		ctx:     context.Background(),
		cancel:  func() {},
	}
}

// Start launches the workers. Cancelling ctx aborts deliveries in progress;
// use Shutdown to stop after draining.
func (q *Queue) Start(ctx context.Context) {
	q.ctx, q.cancel = context.WithCancel(ctx)

	q.logger.Info("notification queue starting", slog.Int("workers", q.workers))

	for i := range q.workers {
		q.wg.Add(1)
		go q.work(i)
	}
}

func (q *Queue) work(worker int) {
	defer q.wg.Done()

	for n := range q.jobs {
		q.deliver(worker, n)
	}
}

func (q *Queue) deliver(worker int, n Notification) {
	log := q.logger.With(slog.Int("worker", worker), slog.String("order_id", n.OrderID))

	if err := q.limiter.Wait(q.ctx, n.Email); err != nil {
		q.failed.Add(1)
		log.Warn("notification abandoned while pacing", slog.String("error", err.Error()))
		return
	}

	if err := q.sender.Send(q.ctx, n); err != nil {
		q.failed.Add(1)
		log.Error("notification failed", slog.String("error", err.Error()))
		return
	}

	q.sent.Add(1)
}

// Enqueue schedules n for delivery without blocking. It reports false and
// drops n when the queue is full or shut down.
func (q *Queue) Enqueue(n Notification) bool {
	q.closedMu.RLock()
	defer q.closedMu.RUnlock()

	if q.closed {
		q.dropped.Add(1)
		q.logger.Warn("notification dropped, queue closed", slog.String("order_id", n.OrderID))
		return false
	}

	select {
	case q.jobs <- n:
		return true
	default:
		q.dropped.Add(1)
		q.logger.Warn("notification dropped, queue full", slog.String("order_id", n.OrderID))
		return false
	}
}

// Shutdown stops accepting notifications and waits for the workers to drain
// the queue. When ctx expires first, pending deliveries are abandoned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.closedMu.Lock()
	if q.closed {
		q.closedMu.Unlock()
		return ErrQueueClosed
	}
	q.closed = true
	close(q.jobs)
	q.closedMu.Unlock()

	defer q.limiter.Stop()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("notification queue drained", slog.Int64("sent", q.sent.Load()))
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		q.logger.Warn("notification drain timeout, pending confirmations abandoned")
		return ctx.Err()
	}
}

// Stats returns a snapshot of the delivery counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Sent:    q.sent.Load(),
		Failed:  q.failed.Load(),
		Dropped: q.dropped.Load(),
	}
}
