package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"hyperexec/internal/app"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Local overrides (.env is optional, gitignored)
	if err := godotenv.Load(); err == nil {
		slog.Info("🔑 Loaded environment overrides from .env")
	}

	// 2. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 3. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 4. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.Start(ctx)
	slog.InfoContext(ctx, "✨ HyperExec fully operational. Press Ctrl+C to exit.")

	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	bootstrap.Shutdown()
}
