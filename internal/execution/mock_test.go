package execution

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"hyperexec/internal/domain"
	"hyperexec/internal/venue"
	"hyperexec/pkg/quant"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockVenue is a scripted venue.Client for engine and resolver tests.
type mockVenue struct {
	mu sync.Mutex

	listing    []venue.AssetMeta
	listingErr error
	static     venue.StaticMeta
	staticErr  error

	fillPrice quant.PriceMicros // echoed on market fills
	placeErr  error
	onPlace   func() // runs before the placement is recorded

	nextID       uint64
	placeCalls   int
	cancelCalls  int
	listingCalls int
	cancelled    []uint64
}

func newMockVenue(symbols ...string) *mockVenue {
	m := &mockVenue{}
	for _, s := range symbols {
		m.listing = append(m.listing, venue.AssetMeta{Symbol: s, SzDecimals: 4})
	}
	return m
}

func (m *mockVenue) place() (venue.Ack, error) {
	m.mu.Lock()
	hook := m.onPlace
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeCalls++
	if m.placeErr != nil {
		return venue.Ack{}, m.placeErr
	}
	m.nextID++
	return venue.Ack{VenueOrderID: m.nextID, FillPriceMicros: m.fillPrice}, nil
}

func (m *mockVenue) PlaceMarketOrder(_ context.Context, _ uint32, _ bool, _ quant.QtySats, _ bool) (venue.Ack, error) {
	return m.place()
}

func (m *mockVenue) PlaceLimitOrder(_ context.Context, _ uint32, _ bool, price quant.PriceMicros, _ quant.QtySats, _ domain.TimeInForce, _ bool) (venue.Ack, error) {
	ack, err := m.place()
	if err == nil && ack.FillPriceMicros == 0 {
		ack.FillPriceMicros = price
	}
	return ack, err
}

func (m *mockVenue) CancelOrder(_ context.Context, _ uint32, venueOrderID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	m.cancelled = append(m.cancelled, venueOrderID)
	return true, nil
}

func (m *mockVenue) AssetListing(_ context.Context) ([]venue.AssetMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listingCalls++
	if m.listingErr != nil {
		return nil, m.listingErr
	}
	return m.listing, nil
}

func (m *mockVenue) StaticMetadata(_ context.Context) (venue.StaticMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staticErr != nil {
		return venue.StaticMeta{}, m.staticErr
	}
	return m.static, nil
}

func (m *mockVenue) placed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placeCalls
}

func (m *mockVenue) setPlaceErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeErr = err
}
