package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"hyperexec/internal/domain"
	"hyperexec/internal/infra"
	"hyperexec/internal/venue"
)

// wellKnownAssets is the last-resort resolution table for the majors.
// A hit here means both venue metadata paths failed, which is logged
// loudly because the ids may be stale.
var wellKnownAssets = map[string]uint32{
	"BTC": 0,
	"ETH": 1,
	"SOL": 2,
}

// SymbolResolver maps a symbol to the venue asset id. Resolution is
// attempted in order: live asset listing, static metadata, the
// well-known table. Successful lookups are cached for the process
// lifetime; asset ids do not change while the venue is up.
type SymbolResolver struct {
	client  venue.Client
	limiter *infra.RateLimiter
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]uint32
}

func NewSymbolResolver(client venue.Client, logger *slog.Logger) *SymbolResolver {
	return &SymbolResolver{
		client:  client,
		limiter: infra.GetVenueInfoLimiter(),
		logger:  logger,
		cache:   make(map[string]uint32),
	}
}

// Resolve returns the asset id for symbol, consulting the fallback
// chain on a cache miss. A miss across all three tiers returns
// domain.ErrSymbolNotFound.
func (r *SymbolResolver) Resolve(ctx context.Context, symbol string) (uint32, error) {
	r.mu.RLock()
	id, ok := r.cache[symbol]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	if id, err := r.fromListing(ctx, symbol); err == nil {
		r.store(symbol, id)
		return id, nil
	} else {
		r.logger.Debug("SYMBOL_RESOLVE: Listing Miss", "symbol", symbol, "error", err)
	}

	if id, err := r.fromStaticMetadata(ctx, symbol); err == nil {
		r.store(symbol, id)
		return id, nil
	} else {
		r.logger.Debug("SYMBOL_RESOLVE: Static Metadata Miss", "symbol", symbol, "error", err)
	}

	if id, ok := wellKnownAssets[symbol]; ok {
		r.logger.Warn("SYMBOL_RESOLVE: Using Well-Known Fallback Table",
			"symbol", symbol, "asset_id", id)
		r.store(symbol, id)
		return id, nil
	}

	return 0, fmt.Errorf("resolve %q: %w", symbol, domain.ErrSymbolNotFound)
}

func (r *SymbolResolver) fromListing(ctx context.Context, symbol string) (uint32, error) {
	r.limiter.Wait()
	listing, err := r.client.AssetListing(ctx)
	if err != nil {
		return 0, err
	}
	for i, meta := range listing {
		if meta.Symbol == symbol {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("symbol %q not in listing", symbol)
}

func (r *SymbolResolver) fromStaticMetadata(ctx context.Context, symbol string) (uint32, error) {
	r.limiter.Wait()
	meta, err := r.client.StaticMetadata(ctx)
	if err != nil {
		return 0, err
	}
	for i, s := range meta.Symbols {
		if s == symbol {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("symbol %q not in static metadata", symbol)
}

func (r *SymbolResolver) store(symbol string, id uint32) {
	r.mu.Lock()
	r.cache[symbol] = id
	r.mu.Unlock()
}
