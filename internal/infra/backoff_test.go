package infra

import (
	"testing"
	"time"
)

func TestReconnectDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{"negative attempt", -1, 1 * time.Second},
		{"first attempt", 0, 1 * time.Second},
		{"second attempt", 1, 2 * time.Second},
		{"third attempt", 2, 4 * time.Second},
		{"sixth attempt", 5, 32 * time.Second},
		{"capped", 6, 60 * time.Second},
		{"far past cap", 20, 60 * time.Second},
		{"shift overflow guard", 63, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReconnectDelay(tt.attempt); got != tt.want {
				t.Errorf("ReconnectDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestReconnectDelayNeverExceedsCap(t *testing.T) {
	for attempt := -5; attempt < 100; attempt++ {
		d := ReconnectDelay(attempt)
		if d < reconnectBase || d > reconnectCap {
			t.Fatalf("ReconnectDelay(%d) = %v outside [%v, %v]", attempt, d, reconnectBase, reconnectCap)
		}
	}
}
