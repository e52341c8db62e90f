// Package app orchestrates process startup and shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"hyperexec/internal/event"
	"hyperexec/internal/execution"
	"hyperexec/internal/infra"
	"hyperexec/internal/storage"
	"hyperexec/internal/venue"
)

// Bootstrap owns every long-lived component of the process.
type Bootstrap struct {
	Config  *infra.Config
	Engine  *execution.Engine
	Marks   *infra.MarkBook
	Journal *storage.Journal

	feed    *infra.PriceFeed
	metrics *infra.MetricsServer
	unlock  func()

	journalQuit chan struct{}
	journalDone chan struct{}
}

// NewBootstrap creates an empty Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config and wires the component graph:
// config -> logger -> workspace -> journal -> price feed -> venue -> engine.
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping HyperExec...")

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	mode := strings.ToLower(cfg.Venue.Mode)
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data", mode)
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// One process per journal database.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	if cfg.Journal.Enabled {
		dbPath := filepath.Join(dataDir, "journal.db")
		journal, err := storage.OpenJournal(dbPath)
		if err != nil {
			return err
		}
		b.Journal = journal
		slog.Info("✅ Journal initialized (WAL-mode)", "path", dbPath, "mode", mode)
	}

	b.Marks = infra.NewMarkBook()
	if cfg.PriceFeed.Enabled {
		b.feed = infra.NewPriceFeed(cfg.PriceFeed.WSURL, b.Marks)
		slog.Info("✅ Price feed configured", "url", cfg.PriceFeed.WSURL)
	}

	client, err := venue.NewClient(cfg, b.Marks.Get)
	if err != nil {
		return err
	}

	b.Engine = execution.New(execution.Config{
		TickInterval:    time.Duration(cfg.Engine.TickIntervalMS) * time.Millisecond,
		EventBufferSize: cfg.Engine.EventBufferSize,
	}, client, b.Marks.Get, logger)
	slog.Info("✅ Execution engine wired", "mode", mode,
		"tick_interval_ms", cfg.Engine.TickIntervalMS)

	if cfg.Metrics.Enabled {
		b.metrics = &infra.MetricsServer{}
		if err := b.metrics.Start(cfg.Metrics.Addr); err != nil {
			return err
		}
	}

	return nil
}

// Start launches the runtime components.
func (b *Bootstrap) Start(ctx context.Context) {
	if b.feed != nil {
		b.feed.Start(ctx)
	}
	b.Engine.Start(ctx)
	if b.Journal != nil {
		b.journalQuit = make(chan struct{})
		b.journalDone = make(chan struct{})
		go b.journalEvents()
	}
}

// journalEvents drains the engine's event stream into the journal.
// Terminal-order events also persist the final report. The loop runs
// independently of the process signal context: Engine.Stop publishes
// cancellation events for every active order, and those must still be
// journaled. On quit the buffered channel is drained one final time.
func (b *Bootstrap) journalEvents() {
	defer close(b.journalDone)
	for {
		select {
		case ev := <-b.Engine.Events():
			b.journalOne(ev)
		case <-b.journalQuit:
			for {
				select {
				case ev := <-b.Engine.Events():
					b.journalOne(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *Bootstrap) journalOne(ev event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Journal.SaveEvent(ctx, ev); err != nil {
		slog.Warn("JOURNAL_WRITE_FAILED", "seq", ev.GetSeq(), "error", err)
	}
	report, err := b.Engine.GetExecutionReport(ev.GetOrderID())
	if err != nil || report.EndUnixM == 0 {
		return
	}
	if err := b.Journal.SaveReport(ctx, report); err != nil {
		slog.Warn("JOURNAL_REPORT_FAILED", "order_id", ev.GetOrderID(), "error", err)
	}
}

// Shutdown stops components in reverse dependency order. The journal
// loop is stopped after the engine so the final cancellation events and
// reports land in the journal.
func (b *Bootstrap) Shutdown() {
	b.Engine.Stop()
	if b.feed != nil {
		b.feed.Stop()
	}
	if b.journalQuit != nil {
		close(b.journalQuit)
		<-b.journalDone
	}
	if b.metrics != nil {
		b.metrics.Stop()
	}
	if b.Journal != nil {
		b.Journal.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
	slog.Info("👋 Shutdown complete")
}
