package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pagebound/bookstore-server/internal/config"
	"github.com/pagebound/bookstore-server/internal/logger"
	"github.com/pagebound/bookstore-server/internal/notify"
)

// NotifyQueueHandle wraps the order confirmation queue with shutdown capability.
type NotifyQueueHandle struct {
	*notify.Queue
	log *logger.Logger
}

// Shutdown implements do.Shutdownable.
func (h *NotifyQueueHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := h.Queue.Shutdown(ctx)
	stats := h.Stats()
	log := h.log.WithFields(map[string]any{
		"sent":    stats.Sent,
		"failed":  stats.Failed,
		"dropped": stats.Dropped,
	})
	if err != nil {
		log.WithError(err).Warn("Notification queue stopped before draining")
		return err
	}
	log.Info("Notification queue stopped")
	return nil
}

// ProvideNotifyQueue provides the order confirmation queue and starts its workers.
func ProvideNotifyQueue(i do.Injector) (*NotifyQueueHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	queue := notify.NewQueue(notify.NewLogSender(log.Logger), notify.Config{
		QueueSize:             cfg.Notify.QueueSize,
		Workers:               cfg.Notify.Workers,
		PerRecipientPerMinute: cfg.Notify.PerRecipientPerMinute,
	}, log.Logger)
	queue.Start(context.Background())

	log.Info("Notification queue started", "workers", cfg.Notify.Workers, "queue_size", cfg.Notify.QueueSize)

	return &NotifyQueueHandle{Queue: queue, log: log}, nil
}
