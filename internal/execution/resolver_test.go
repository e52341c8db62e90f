package execution

import (
	"context"
	"errors"
	"testing"

	"hyperexec/internal/domain"
	"hyperexec/internal/venue"
)

func TestResolveFromListing(t *testing.T) {
	mock := newMockVenue("BTC", "ETH", "SOL")
	r := NewSymbolResolver(mock, testLogger())

	id, err := r.Resolve(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != 1 {
		t.Errorf("asset id = %d, want 1", id)
	}
}

func TestResolveCachesLookups(t *testing.T) {
	mock := newMockVenue("BTC")
	r := NewSymbolResolver(mock, testLogger())

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), "BTC"); err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
	}
	if mock.listingCalls != 1 {
		t.Errorf("listing fetched %d times, want 1", mock.listingCalls)
	}
}

func TestResolveFallsBackToStaticMetadata(t *testing.T) {
	mock := newMockVenue()
	mock.listingErr = errors.New("info endpoint down")
	mock.static = venue.StaticMeta{Symbols: []string{"BTC", "ETH"}}
	r := NewSymbolResolver(mock, testLogger())

	id, err := r.Resolve(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != 1 {
		t.Errorf("asset id = %d, want 1", id)
	}
}

func TestResolveFallsBackToWellKnownTable(t *testing.T) {
	mock := newMockVenue()
	mock.listingErr = errors.New("info endpoint down")
	mock.staticErr = errors.New("no static metadata")
	r := NewSymbolResolver(mock, testLogger())

	id, err := r.Resolve(context.Background(), "SOL")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != wellKnownAssets["SOL"] {
		t.Errorf("asset id = %d, want %d", id, wellKnownAssets["SOL"])
	}
}

func TestResolveUnknownSymbol(t *testing.T) {
	mock := newMockVenue("BTC")
	r := NewSymbolResolver(mock, testLogger())

	_, err := r.Resolve(context.Background(), "DOGE")
	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Fatalf("error = %v, want ErrSymbolNotFound", err)
	}
}
