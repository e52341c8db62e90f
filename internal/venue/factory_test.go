package venue

import (
	"testing"

	"hyperexec/internal/infra"
)

func testConfig(mode string) *infra.Config {
	cfg := &infra.Config{}
	cfg.Venue.Mode = mode
	cfg.Venue.Symbols = []string{"BTC", "ETH"}
	cfg.Venue.InitialBalance = 50_000
	return cfg
}

func TestNewClient_Paper(t *testing.T) {
	client, err := NewClient(testConfig("PAPER"), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, ok := client.(*Paper); !ok {
		t.Errorf("expected *Paper, got %T", client)
	}
}

func TestNewClient_RealRequiresLatch(t *testing.T) {
	t.Setenv("CONFIRM_REAL_MONEY", "")

	if _, err := NewClient(testConfig("REAL"), nil); err == nil {
		t.Error("REAL mode without the safety latch must fail")
	}
}

func TestNewClient_UnknownMode(t *testing.T) {
	if _, err := NewClient(testConfig("SANDBOX"), nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}
