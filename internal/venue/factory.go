package venue

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hyperexec/internal/infra"
	"hyperexec/pkg/quant"
)

// Mode represents the venue connection mode.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeReal  Mode = "REAL"
)

// NewClient returns the venue client for the configured mode.
func NewClient(cfg *infra.Config, source MarkSource) (Client, error) {
	mode := Mode(strings.ToUpper(cfg.Venue.Mode))

	slog.Info("Initializing venue client", "mode", mode)

	switch mode {
	case ModePaper:
		listing := make([]AssetMeta, len(cfg.Venue.Symbols))
		for i, sym := range cfg.Venue.Symbols {
			listing[i] = AssetMeta{Symbol: sym}
		}
		initial := int64(quant.ToQtySats(cfg.Venue.InitialBalance))
		if initial <= 0 {
			initial = int64(quant.ToQtySats(100_000)) // 100k quote units
		}
		return NewPaper(listing, initial, source), nil

	case ModeReal:
		// Real trading: safety latch first, transport second.
		if os.Getenv("CONFIRM_REAL_MONEY") != "true" {
			return nil, fmt.Errorf("SAFETY_GUARD: real trading requires CONFIRM_REAL_MONEY=true")
		}
		// The signed transport adapter lives outside this module and is
		// injected by the surrounding gateway.
		return nil, fmt.Errorf("REAL mode requires an injected venue transport")

	default:
		return nil, fmt.Errorf("unknown venue mode: %s", cfg.Venue.Mode)
	}
}
