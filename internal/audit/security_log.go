// Package audit keeps the in-memory security event log and forwards entries
// to external audit sinks.
package audit

import (
	"sync"

	"securebank/internal/clock"
	"securebank/internal/metrics"
	"securebank/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityLog is an append-only, in-memory log of security events read
// newest-first. It is unbounded.
type SecurityLog struct {
	mu         sync.RWMutex
	entries    []models.SecurityLogEntry
	clock      clock.Clock
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewSecurityLog creates a log. dispatcher may be nil, in which case entries
// only live in memory.
func NewSecurityLog(clk clock.Clock, dispatcher *Dispatcher, logger *zap.Logger) *SecurityLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityLog{
		clock:      clk,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Record appends one entry and hands it to the dispatcher.
func (l *SecurityLog) Record(eventType models.SecurityEventType, description, username string) models.SecurityLogEntry {
	entry := models.SecurityLogEntry{
		ID:          uuid.NewString(),
		Timestamp:   l.clock.Now().UTC(),
		EventType:   eventType,
		Description: description,
		Username:    username,
		IPAddress:   models.PlaceholderIPAddress,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	metrics.SecurityEvents.WithLabelValues(string(eventType)).Inc()
	l.logger.Info("[SECURITY LOG]",
		zap.String("event_type", string(eventType)),
		zap.String("description", description),
		zap.String("username", username),
		zap.String("event_id", entry.ID),
	)

	if l.dispatcher != nil {
		l.dispatcher.Enqueue(entry)
	}
	return entry
}

// Entries returns a copy of the log, newest first.
func (l *SecurityLog) Entries() []models.SecurityLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.SecurityLogEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

func (l *SecurityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
