// Package venue defines the contract with the external trading venue
// and provides the in-process paper implementation.
package venue

import (
	"context"

	"hyperexec/internal/domain"
	"hyperexec/pkg/quant"
)

// Ack is the venue's acknowledgement of an accepted child order.
// FillPriceMicros is zero when the venue does not echo an execution
// price; callers fall back to the instruction's own price.
type Ack struct {
	VenueOrderID    uint64
	FillPriceMicros quant.PriceMicros
}

// AssetMeta is one entry of the venue's asset listing. The listing's
// positional index doubles as the asset id when no explicit id exists,
// matching the venue's metadata shape.
type AssetMeta struct {
	Symbol     string `json:"name"`
	SzDecimals int    `json:"szDecimals"`
}

// StaticMeta is the adapter-level static metadata used as a resolution
// fallback when the live listing is unavailable.
type StaticMeta struct {
	Symbols []string `json:"symbols"`
}

// Client is the venue collaborator consumed by the execution engine.
// Implementations own their own authentication, timeouts and retries;
// the engine never retries a failed call.
type Client interface {
	// PlaceMarketOrder submits an immediately-matching child order.
	PlaceMarketOrder(ctx context.Context, assetID uint32, isBuy bool, qty quant.QtySats, reduceOnly bool) (Ack, error)

	// PlaceLimitOrder submits a priced child order.
	PlaceLimitOrder(ctx context.Context, assetID uint32, isBuy bool, price quant.PriceMicros, qty quant.QtySats, tif domain.TimeInForce, reduceOnly bool) (Ack, error)

	// CancelOrder attempts a best-effort cancellation of a resting child
	// order. The boolean reports whether the venue acknowledged it.
	CancelOrder(ctx context.Context, assetID uint32, venueOrderID uint64) (bool, error)

	// AssetListing returns the venue's ordered asset metadata.
	AssetListing(ctx context.Context) ([]AssetMeta, error)

	// StaticMetadata returns the adapter-level fallback metadata.
	StaticMetadata(ctx context.Context) (StaticMeta, error)
}
