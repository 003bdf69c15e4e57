package audit

import (
	"context"
	"time"

	"securebank/internal/metrics"
	"securebank/internal/models"

	"go.uber.org/zap"
)

const (
	defaultBufferSize     = 1024
	defaultPublishTimeout = 5 * time.Second
)

// Sink receives security log entries for external retention.
type Sink interface {
	Name() string
	Publish(ctx context.Context, entry models.SecurityLogEntry) error
}

// Dispatcher drains entries to every sink on its own goroutine so the engine
// never waits on broker or database I/O. When the buffer is full new entries
// are dropped and counted.
type Dispatcher struct {
	sinks          []Sink
	queue          chan models.SecurityLogEntry
	publishTimeout time.Duration
	logger         *zap.Logger

	done chan struct{}
}

func NewDispatcher(sinks []Sink, bufferSize int, publishTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sinks:          sinks,
		queue:          make(chan models.SecurityLogEntry, bufferSize),
		publishTimeout: publishTimeout,
		logger:         logger,
		done:           make(chan struct{}),
	}
}

func (d *Dispatcher) Enqueue(entry models.SecurityLogEntry) {
	if len(d.sinks) == 0 {
		return
	}
	select {
	case d.queue <- entry:
	default:
		metrics.AuditDropped.Inc()
		d.logger.Warn("Audit queue full, dropping security event",
			zap.String("event_id", entry.ID),
			zap.String("event_type", string(entry.EventType)),
		)
	}
}

// Run publishes queued entries until ctx is cancelled, then drains what is
// left in the buffer before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case entry := <-d.queue:
			d.publish(entry)
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case entry := <-d.queue:
			d.publish(entry)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(entry models.SecurityLogEntry) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
		err := sink.Publish(ctx, entry)
		cancel()
		if err != nil {
			metrics.AuditPublishFailures.WithLabelValues(sink.Name()).Inc()
			d.logger.Warn("Failed to publish security event",
				zap.String("sink", sink.Name()),
				zap.String("event_id", entry.ID),
				zap.Error(err),
			)
			continue
		}
		d.logger.Debug("Security event published",
			zap.String("sink", sink.Name()),
			zap.String("event_id", entry.ID),
		)
	}
}
