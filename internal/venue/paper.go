package venue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hyperexec/internal/domain"
	"hyperexec/pkg/quant"
)

// QuoteSymbol is the paper venue's settlement currency.
const QuoteSymbol = "USDC"

// MarkSource supplies the current mark price for a symbol, typically
// backed by the websocket price feed.
type MarkSource func(symbol string) (quant.PriceMicros, bool)

// Fill records one simulated execution.
type Fill struct {
	VenueOrderID uint64
	Symbol       string
	IsBuy        bool
	PriceMicros  quant.PriceMicros
	QtySats      quant.QtySats
	TsUnixMicros int64
}

// Paper simulates the venue against virtual balances. Fills are atomic:
// an accepted child order fills entirely at the execution price, which
// mirrors the engine's slice-level fill model.
type Paper struct {
	mu       sync.Mutex
	listing  []AssetMeta
	balances *BalanceBook
	marks    map[string]quant.PriceMicros // explicit overrides, win over source
	source   MarkSource
	nextID   uint64
	acked    map[uint64]string // venue order id -> symbol
	fills    []Fill
}

// NewPaper creates a paper venue trading the given assets with an
// initial quote balance.
func NewPaper(listing []AssetMeta, initialQuoteSats int64, source MarkSource) *Paper {
	balances := NewBalanceBook()
	balances.Get(QuoteSymbol).Credit(initialQuoteSats, time.Now().UnixMicro())

	return &Paper{
		listing:  listing,
		balances: balances,
		marks:    make(map[string]quant.PriceMicros),
		source:   source,
		acked:    make(map[uint64]string),
	}
}

// SetMark pins a mark price, overriding the mark source. Used by tests
// and by deployments without a feed.
func (p *Paper) SetMark(symbol string, price quant.PriceMicros) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marks[symbol] = price
}

// Deposit adds funds to the virtual account.
func (p *Paper) Deposit(symbol string, amountSats int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances.Get(symbol).Credit(amountSats, time.Now().UnixMicro())
}

// PlaceMarketOrder fills immediately at the current mark price.
func (p *Paper) PlaceMarketOrder(ctx context.Context, assetID uint32, isBuy bool, qty quant.QtySats, reduceOnly bool) (Ack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	symbol, err := p.symbolFor(assetID)
	if err != nil {
		return Ack{}, err
	}

	mark, ok := p.markFor(symbol)
	if !ok {
		return Ack{}, fmt.Errorf("no mark price available for %s", symbol)
	}

	return p.fill(symbol, isBuy, mark, qty)
}

// PlaceLimitOrder fills immediately at the limit price.
func (p *Paper) PlaceLimitOrder(ctx context.Context, assetID uint32, isBuy bool, price quant.PriceMicros, qty quant.QtySats, tif domain.TimeInForce, reduceOnly bool) (Ack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	symbol, err := p.symbolFor(assetID)
	if err != nil {
		return Ack{}, err
	}

	if price <= 0 {
		return Ack{}, fmt.Errorf("limit price must be positive, got %v", price)
	}

	return p.fill(symbol, isBuy, price, qty)
}

// CancelOrder acknowledges cancellation of a known order id. Fills are
// atomic so there is never a resting quantity to remove.
func (p *Paper) CancelOrder(ctx context.Context, assetID uint32, venueOrderID uint64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.acked[venueOrderID]
	return ok, nil
}

// AssetListing returns the simulated asset universe.
func (p *Paper) AssetListing(ctx context.Context) ([]AssetMeta, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]AssetMeta, len(p.listing))
	copy(out, p.listing)
	return out, nil
}

// StaticMetadata returns the same universe in fallback shape.
func (p *Paper) StaticMetadata(ctx context.Context) (StaticMeta, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	meta := StaticMeta{Symbols: make([]string, len(p.listing))}
	for i, a := range p.listing {
		meta.Symbols[i] = a.Symbol
	}
	return meta, nil
}

// GetFills returns all executed fills.
func (p *Paper) GetFills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}

// GetBalance returns the balance for a symbol.
func (p *Paper) GetBalance(symbol string) Balance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.balances.Get(symbol)
}

// TotalEquity values the account in quote units at current marks.
func (p *Paper) TotalEquity() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()

	marks := make(map[string]quant.PriceMicros, len(p.listing))
	for _, a := range p.listing {
		if mark, ok := p.markFor(a.Symbol); ok {
			marks[a.Symbol] = mark
		}
	}
	return p.balances.TotalEquity(QuoteSymbol, marks)
}

func (p *Paper) symbolFor(assetID uint32) (string, error) {
	if int(assetID) >= len(p.listing) {
		return "", fmt.Errorf("unknown asset id %d", assetID)
	}
	return p.listing[assetID].Symbol, nil
}

func (p *Paper) markFor(symbol string) (quant.PriceMicros, bool) {
	if mark, ok := p.marks[symbol]; ok {
		return mark, true
	}
	if p.source != nil {
		return p.source(symbol)
	}
	return 0, false
}

// fill settles one execution against the balance book.
// Must be called with the mutex held.
func (p *Paper) fill(symbol string, isBuy bool, price quant.PriceMicros, qty quant.QtySats) (Ack, error) {
	if qty <= 0 {
		return Ack{}, fmt.Errorf("quantity must be positive, got %v", qty)
	}

	nowUnixM := time.Now().UnixMicro()
	// Quote cost in sats: (price * qty) scaled from quote units to 10^8.
	quoteSats := quant.Notional(price, qty).Mul(decimal.NewFromInt(quant.QtyScale)).IntPart()

	if isBuy {
		quoteBalance := p.balances.Get(QuoteSymbol)
		if quoteBalance.AvailableSats() < quoteSats {
			return Ack{}, fmt.Errorf("insufficient %s balance: need %d, have %d",
				QuoteSymbol, quoteSats, quoteBalance.AvailableSats())
		}
		quoteBalance.Debit(quoteSats, nowUnixM)
		p.balances.Get(symbol).Credit(int64(qty), nowUnixM)
	} else {
		baseBalance := p.balances.Get(symbol)
		if baseBalance.AvailableSats() < int64(qty) {
			return Ack{}, fmt.Errorf("insufficient %s balance: need %d, have %d",
				symbol, qty, baseBalance.AvailableSats())
		}
		baseBalance.Debit(int64(qty), nowUnixM)
		p.balances.Get(QuoteSymbol).Credit(quoteSats, nowUnixM)
	}

	p.nextID++
	id := p.nextID
	p.acked[id] = symbol
	p.fills = append(p.fills, Fill{
		VenueOrderID: id,
		Symbol:       symbol,
		IsBuy:        isBuy,
		PriceMicros:  price,
		QtySats:      qty,
		TsUnixMicros: nowUnixM,
	})

	slog.Info("PAPER VENUE: Order Filled",
		slog.Uint64("venue_order_id", id),
		slog.String("symbol", symbol),
		slog.Bool("is_buy", isBuy),
		slog.Int64("price", int64(price)),
		slog.Int64("qty", int64(qty)))

	return Ack{VenueOrderID: id, FillPriceMicros: price}, nil
}
