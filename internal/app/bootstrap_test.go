package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"hyperexec/internal/domain"
	"hyperexec/internal/execution"
	"hyperexec/internal/storage"
	"hyperexec/internal/venue"
	"hyperexec/pkg/quant"
)

// Shutdown must journal the cancellation events and final reports that
// Engine.Stop publishes, even though the signal context is already
// cancelled by then.
func TestShutdownJournalsFinalEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	journal, err := storage.OpenJournal(dbPath)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paper := venue.NewPaper([]venue.AssetMeta{{Symbol: "BTC"}}, 0, nil)
	engine := execution.New(execution.Config{
		TickInterval:    time.Hour, // never ticks during the test
		EventBufferSize: 64,
	}, paper, nil, logger)

	b := &Bootstrap{Engine: engine, Journal: journal}

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)

	id, err := engine.SubmitOrder(ctx, domain.OrderSpec{
		Symbol:    "BTC",
		Side:      domain.SideBuy,
		Kind:      domain.KindMarket,
		QtySats:   quant.ToQtySats(1.0),
		Algorithm: domain.AlgoImmediate,
	})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	cancel() // the signal arrives first, then Shutdown runs
	b.Shutdown()

	// The journal was closed by Shutdown; reopen to inspect.
	reopened, err := storage.OpenJournal(dbPath)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.CountEvents(context.Background(), id)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 2 { // ORDER_SUBMITTED + ORDER_CANCELLED
		t.Errorf("journaled events = %d, want 2", n)
	}

	report, err := reopened.LoadReport(context.Background(), id)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if report.EndUnixM == 0 {
		t.Error("final report not journaled")
	}
}
