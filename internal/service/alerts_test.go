package service

import (
	"testing"
	"time"

	"securebank/internal/clock"
	"securebank/internal/models"
)

func TestAlertExpiresAfterFiveSeconds(t *testing.T) {
	clk := clock.NewFake(testStart)
	alerts := NewAlertCenter(clk)

	alerts.Show(models.AlertInfo, "hello")
	clk.Advance(4999 * time.Millisecond)
	if alert, ok := alerts.Current(); !ok || alert.Message != "hello" {
		t.Fatalf("expected alert still shown, got %+v %v", alert, ok)
	}

	clk.Advance(time.Millisecond)
	if _, ok := alerts.Current(); ok {
		t.Fatalf("expected alert to expire")
	}
}

func TestNewerAlertReplacesOlder(t *testing.T) {
	clk := clock.NewFake(testStart)
	alerts := NewAlertCenter(clk)

	alerts.Show(models.AlertInfo, "first")
	clk.Advance(3 * time.Second)
	alerts.Show(models.AlertError, "second")
	clk.Advance(3 * time.Second)

	alert, ok := alerts.Current()
	if !ok || alert.Message != "second" || alert.Severity != models.AlertError {
		t.Fatalf("expected second alert, got %+v %v", alert, ok)
	}
}
