package venue

import (
	"context"
	"testing"

	"hyperexec/internal/domain"
	"hyperexec/pkg/quant"
)

func newTestPaper(t *testing.T) *Paper {
	t.Helper()
	listing := []AssetMeta{{Symbol: "BTC"}, {Symbol: "ETH"}}
	p := NewPaper(listing, int64(quant.ToQtySats(1_000_000)), nil)
	p.SetMark("BTC", quant.ToPriceMicros(50000))
	return p
}

func TestPaper_ImplementsClient(t *testing.T) {
	var _ Client = (*Paper)(nil) // Compile-time check
}

func TestPaper_MarketBuy(t *testing.T) {
	p := newTestPaper(t)
	ctx := context.Background()

	ack, err := p.PlaceMarketOrder(ctx, 0, true, quant.ToQtySats(1.0), false)
	if err != nil {
		t.Fatalf("PlaceMarketOrder failed: %v", err)
	}
	if ack.VenueOrderID == 0 {
		t.Error("expected a venue order id")
	}
	if ack.FillPriceMicros != quant.ToPriceMicros(50000) {
		t.Errorf("fill price = %v, want mark price", ack.FillPriceMicros)
	}

	// Balances moved: -50,000 USDC, +1 BTC
	if got := p.GetBalance("BTC").AmountSats; got != int64(quant.ToQtySats(1.0)) {
		t.Errorf("BTC balance = %d, want 1.0", got)
	}
	if got := p.GetBalance(QuoteSymbol).AmountSats; got != int64(quant.ToQtySats(950_000)) {
		t.Errorf("USDC balance = %d, want 950000", got)
	}

	fills := p.GetFills()
	if len(fills) != 1 || !fills[0].IsBuy {
		t.Fatalf("unexpected fills: %+v", fills)
	}
}

func TestPaper_LimitSellRoundTrip(t *testing.T) {
	p := newTestPaper(t)
	ctx := context.Background()

	if _, err := p.PlaceMarketOrder(ctx, 0, true, quant.ToQtySats(2.0), false); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	// Sell back 2 BTC at 51,000 via limit
	_, err := p.PlaceLimitOrder(ctx, 0, false, quant.ToPriceMicros(51000), quant.ToQtySats(2.0), domain.TIFGtc, false)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	if got := p.GetBalance("BTC").AmountSats; got != 0 {
		t.Errorf("BTC balance = %d, want 0", got)
	}
	// 1,000,000 - 100,000 + 102,000 = 1,002,000
	if got := p.GetBalance(QuoteSymbol).AmountSats; got != int64(quant.ToQtySats(1_002_000)) {
		t.Errorf("USDC balance = %d, want 1002000", got)
	}
}

func TestPaper_InsufficientBalance(t *testing.T) {
	listing := []AssetMeta{{Symbol: "BTC"}}
	p := NewPaper(listing, int64(quant.ToQtySats(100)), nil) // 100 USDC only
	p.SetMark("BTC", quant.ToPriceMicros(50000))

	_, err := p.PlaceMarketOrder(context.Background(), 0, true, quant.ToQtySats(1.0), false)
	if err == nil {
		t.Error("expected insufficient balance error")
	}

	// Sell without holdings
	_, err = p.PlaceMarketOrder(context.Background(), 0, false, quant.ToQtySats(1.0), false)
	if err == nil {
		t.Error("expected insufficient base balance error")
	}
}

func TestPaper_NoMarkPrice(t *testing.T) {
	p := newTestPaper(t)

	// ETH has no mark set and no source
	_, err := p.PlaceMarketOrder(context.Background(), 1, true, quant.ToQtySats(1.0), false)
	if err == nil {
		t.Error("expected error without a mark price")
	}
}

func TestPaper_UnknownAsset(t *testing.T) {
	p := newTestPaper(t)

	_, err := p.PlaceMarketOrder(context.Background(), 99, true, quant.ToQtySats(1.0), false)
	if err == nil {
		t.Error("expected error for unknown asset id")
	}
}

func TestPaper_CancelOrder(t *testing.T) {
	p := newTestPaper(t)
	ctx := context.Background()

	ack, err := p.PlaceMarketOrder(ctx, 0, true, quant.ToQtySats(1.0), false)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	ok, err := p.CancelOrder(ctx, 0, ack.VenueOrderID)
	if err != nil || !ok {
		t.Errorf("cancel of known id = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = p.CancelOrder(ctx, 0, 424242)
	if err != nil || ok {
		t.Errorf("cancel of unknown id = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestPaper_MetadataListing(t *testing.T) {
	p := newTestPaper(t)
	ctx := context.Background()

	listing, err := p.AssetListing(ctx)
	if err != nil {
		t.Fatalf("AssetListing failed: %v", err)
	}
	if len(listing) != 2 || listing[0].Symbol != "BTC" {
		t.Errorf("unexpected listing: %+v", listing)
	}

	static, err := p.StaticMetadata(ctx)
	if err != nil {
		t.Fatalf("StaticMetadata failed: %v", err)
	}
	if len(static.Symbols) != 2 || static.Symbols[1] != "ETH" {
		t.Errorf("unexpected static metadata: %+v", static)
	}
}

func TestPaper_TotalEquity(t *testing.T) {
	p := newTestPaper(t)
	ctx := context.Background()

	// Buying at the mark leaves equity unchanged.
	if _, err := p.PlaceMarketOrder(ctx, 0, true, quant.ToQtySats(1.0), false); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	equity := p.TotalEquity()
	if equity.String() != "1000000" {
		t.Errorf("equity = %s, want 1000000", equity)
	}
}
