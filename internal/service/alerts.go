package service

import (
	"sync"
	"time"

	"securebank/internal/clock"
	"securebank/internal/models"
)

const alertDisplayDuration = 5 * time.Second

// AlertCenter keeps the single notification currently shown to the user.
// A newer alert replaces the older one; each disappears 5s after it was shown.
type AlertCenter struct {
	mu      sync.Mutex
	clock   clock.Clock
	current *models.Alert
}

func NewAlertCenter(clk clock.Clock) *AlertCenter {
	return &AlertCenter{clock: clk}
}

func (c *AlertCenter) Show(severity models.AlertSeverity, message string) models.Alert {
	now := c.clock.Now()
	alert := models.Alert{
		Severity:  severity,
		Message:   message,
		ShownAt:   now,
		ExpiresAt: now.Add(alertDisplayDuration),
	}

	c.mu.Lock()
	c.current = &alert
	c.mu.Unlock()
	return alert
}

// Current returns the active alert, if any.
func (c *AlertCenter) Current() (models.Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return models.Alert{}, false
	}
	if !c.clock.Now().Before(c.current.ExpiresAt) {
		c.current = nil
		return models.Alert{}, false
	}
	return *c.current, true
}
