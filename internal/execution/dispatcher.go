package execution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hyperexec/internal/domain"
	"hyperexec/internal/infra"
	"hyperexec/internal/venue"
)

// errBreakerOpen short-circuits dispatch while the venue is considered
// down; the slice fails without consuming a rate-limit token.
var errBreakerOpen = errors.New("circuit breaker open")

// SliceDispatcher performs the venue round trip for one due slice.
// All venue traffic funnels through here: symbol resolution, the order
// rate limiter and the circuit breaker sit in front of every call.
type SliceDispatcher struct {
	client   venue.Client
	resolver *SymbolResolver
	limiter  *infra.RateLimiter
	breaker  *infra.CircuitBreaker
	logger   *slog.Logger
}

func NewSliceDispatcher(client venue.Client, resolver *SymbolResolver, logger *slog.Logger) *SliceDispatcher {
	return &SliceDispatcher{
		client:   client,
		resolver: resolver,
		limiter:  infra.GetVenueOrderLimiter(),
		breaker:  infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("venue-orders")),
		logger:   logger,
	}
}

// Dispatch takes a PENDING slice through SUBMITTED to a terminal state.
// Venue failures never propagate: the slice carries the failure and the
// parent's lifecycle decides what it means. Concurrent cancellation is
// honored by re-checking the slice state after the round trip.
func (d *SliceDispatcher) Dispatch(ctx context.Context, st *orderState, sl *domain.Slice) {
	st.mu.Lock()
	if sl.Status != domain.SlicePending {
		st.mu.Unlock()
		return
	}
	sl.Status = domain.SliceSubmitted
	st.report.RecordSliceState(sl)
	spec := st.order.Spec
	st.mu.Unlock()

	ack, err := d.submit(ctx, spec, sl)
	if err != nil {
		d.fail(st, sl, err)
		return
	}

	now := time.Now().UnixMicro()
	st.mu.Lock()
	sl.VenueOrderID = ack.VenueOrderID
	if sl.Status != domain.SliceSubmitted {
		// Cancelled while in flight: the local state stays CANCELLED and
		// the venue-side child is cancelled best effort with the id the
		// ack just delivered.
		st.mu.Unlock()
		if ack.VenueOrderID != 0 {
			d.CancelVenueOrder(ctx, spec.Symbol, ack.VenueOrderID)
		}
		return
	}
	sl.FillPriceMicros = ack.FillPriceMicros
	if sl.FillPriceMicros == 0 {
		sl.FillPriceMicros = sl.PriceMicros
	}
	if sl.FillPriceMicros == 0 {
		sl.FillPriceMicros = st.report.ArrivalPriceMicros
	}
	sl.Status = domain.SliceFilled
	sl.FilledUnixM = now
	st.report.RecordFill(sl)
	st.mu.Unlock()

	slicesDispatchedMetric.WithLabelValues("filled").Inc()
	d.logger.Debug("DISPATCH: Slice Filled",
		"slice_id", sl.ID, "venue_order_id", ack.VenueOrderID,
		"fill_price", sl.FillPriceMicros.String())
}

func (d *SliceDispatcher) submit(ctx context.Context, spec domain.OrderSpec, sl *domain.Slice) (venue.Ack, error) {
	assetID, err := d.resolver.Resolve(ctx, spec.Symbol)
	if err != nil {
		return venue.Ack{}, err
	}

	if !d.breaker.Allow() {
		return venue.Ack{}, &domain.VenueError{Op: "place", Err: errBreakerOpen}
	}
	d.limiter.Wait()

	isBuy := spec.Side == domain.SideBuy
	var ack venue.Ack
	if sl.PriceMicros > 0 {
		ack, err = d.client.PlaceLimitOrder(ctx, assetID, isBuy, sl.PriceMicros, sl.QtySats, spec.TimeInForce, spec.ReduceOnly)
	} else {
		ack, err = d.client.PlaceMarketOrder(ctx, assetID, isBuy, sl.QtySats, spec.ReduceOnly)
	}
	if err != nil {
		d.breaker.RecordFailure()
		return venue.Ack{}, &domain.VenueError{Op: "place", Err: err}
	}
	d.breaker.RecordSuccess()
	return ack, nil
}

// CancelVenueOrder is the best-effort venue-side leg of a cancellation.
func (d *SliceDispatcher) CancelVenueOrder(ctx context.Context, symbol string, venueOrderID uint64) {
	assetID, err := d.resolver.Resolve(ctx, symbol)
	if err != nil {
		d.logger.Debug("DISPATCH: Cancel Resolution Failed", "symbol", symbol, "error", err)
		return
	}
	d.limiter.Wait()
	if _, err := d.client.CancelOrder(ctx, assetID, venueOrderID); err != nil {
		d.logger.Debug("DISPATCH: Venue Cancel Failed", "venue_order_id", venueOrderID, "error", err)
	}
}

func (d *SliceDispatcher) fail(st *orderState, sl *domain.Slice, err error) {
	st.mu.Lock()
	if sl.Status == domain.SliceSubmitted {
		sl.Status = domain.SliceFailed
		sl.FailReason = err.Error()
		st.report.RecordSliceState(sl)
	}
	st.mu.Unlock()

	slicesDispatchedMetric.WithLabelValues("failed").Inc()
	d.logger.Error("VENUE_DISPATCH_FAILED",
		"slice_id", sl.ID, "order_id", sl.OrderID, "error", err)
}
