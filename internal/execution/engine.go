package execution

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"hyperexec/internal/domain"
	"hyperexec/internal/event"
	"hyperexec/internal/venue"
	"hyperexec/pkg/quant"
)

// Config tunes the engine's scheduler and event fanout.
type Config struct {
	TickInterval    time.Duration
	EventBufferSize int
}

func DefaultConfig() Config {
	return Config{
		TickInterval:    time.Second,
		EventBufferSize: 256,
	}
}

// orderState bundles everything the engine knows about one parent
// order behind a single mutex. The engine-level map lock only guards
// index membership; all per-order mutation happens under st.mu.
type orderState struct {
	mu     sync.Mutex
	order  *domain.Order
	slices []*domain.Slice
	report *domain.ExecutionReport
}

// Engine is the smart execution facade. One instance owns the order
// index, the tick scheduler and the event stream.
type Engine struct {
	cfg        Config
	dispatcher *SliceDispatcher
	marks      venue.MarkSource
	logger     *slog.Logger

	mu       sync.RWMutex
	orders   map[string]*orderState
	orderIDs []string // submission order, for deterministic listings

	// rng feeds iceberg randomization; touched only by the tick goroutine.
	rng *rand.Rand

	tickMu sync.Mutex

	lifecycleMu sync.Mutex
	running     bool
	cancelRun   context.CancelFunc
	done        chan struct{}

	events chan event.Event
	seq    uint64

	stats counters
}

// New wires an engine against a venue client. marks may be nil; without
// it arrival prices are zero and slippage is not computable.
func New(cfg Config, client venue.Client, marks venue.MarkSource, logger *slog.Logger) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = 256
	}
	resolver := NewSymbolResolver(client, logger)
	return &Engine{
		cfg:        cfg,
		dispatcher: NewSliceDispatcher(client, resolver, logger),
		marks:      marks,
		logger:     logger,
		orders:     make(map[string]*orderState),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		events:     make(chan event.Event, cfg.EventBufferSize),
	}
}

// Events exposes the engine's notification stream. The channel is never
// closed; a slow consumer loses events rather than stalling execution.
func (e *Engine) Events() <-chan event.Event {
	return e.events
}

// SubmitOrder validates the spec, captures the arrival price and
// registers the order as PENDING. Slicing happens on the next tick.
func (e *Engine) SubmitOrder(ctx context.Context, spec domain.OrderSpec) (string, error) {
	if err := ValidateSpec(spec); err != nil {
		return "", err
	}
	if spec.TimeInForce == "" {
		spec.TimeInForce = domain.TIFGtc
	}

	id := uuid.NewString()
	now := time.Now().UnixMicro()

	var arrival quant.PriceMicros
	if e.marks != nil {
		if p, ok := e.marks(spec.Symbol); ok {
			arrival = p
		}
	}

	st := &orderState{
		order: &domain.Order{
			ID:           id,
			Spec:         spec,
			Status:       domain.OrderPending,
			CreatedUnixM: now,
		},
		report: domain.NewExecutionReport(id, spec, arrival, now),
	}

	e.mu.Lock()
	e.orders[id] = st
	e.orderIDs = append(e.orderIDs, id)
	e.mu.Unlock()

	e.stats.ordersSubmitted.Add(1)
	ordersSubmittedMetric.Inc()
	activeOrdersMetric.Inc()

	e.logger.Info("ENGINE: Order Submitted",
		"order_id", id, "symbol", spec.Symbol, "side", spec.Side,
		"algo", spec.Algorithm, "qty", spec.QtySats.String())

	e.publish(event.OrderSubmittedEvent{
		BaseEvent: e.base(id, now),
		Report:    st.report.Snapshot(),
	})
	return id, nil
}

// CancelOrder transitions an active order to CANCELLED and marks every
// non-terminal slice as CANCELLED. Cancelling a terminal order is a
// no-op; an unknown id is an error. Venue-side cancellation of resting
// children is best effort and happens after the local transition.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) error {
	st, err := e.lookup(orderID)
	if err != nil {
		return err
	}

	now := time.Now().UnixMicro()

	type restingChild struct{ venueOrderID uint64 }
	var resting []restingChild

	st.mu.Lock()
	if st.order.Status.IsTerminal() {
		st.mu.Unlock()
		return nil
	}
	symbol := st.order.Spec.Symbol
	for _, sl := range st.slices {
		if sl.Status.IsTerminal() {
			continue
		}
		if sl.Status == domain.SliceSubmitted && sl.VenueOrderID != 0 {
			resting = append(resting, restingChild{venueOrderID: sl.VenueOrderID})
		}
		sl.Status = domain.SliceCancelled
		st.report.RecordSliceState(sl)
	}
	st.order.Status = domain.OrderCancelled
	st.report.Finalize(now)
	snap := st.report.Snapshot()
	st.mu.Unlock()

	for _, child := range resting {
		e.dispatcher.CancelVenueOrder(ctx, symbol, child.venueOrderID)
	}

	e.stats.ordersCancelled.Add(1)
	ordersTerminalMetric.WithLabelValues(string(domain.OrderCancelled)).Inc()
	activeOrdersMetric.Dec()

	e.logger.Info("ENGINE: Order Cancelled", "order_id", orderID,
		"filled_qty", snap.FilledQtySats.String())

	e.publish(event.OrderCancelledEvent{BaseEvent: e.base(orderID, now), Report: snap})
	return nil
}

// GetOrderStatus returns the current parent state.
func (e *Engine) GetOrderStatus(orderID string) (domain.OrderStatus, error) {
	st, err := e.lookup(orderID)
	if err != nil {
		return "", err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.order.Status, nil
}

// GetExecutionReport returns a deep copy of the order's report.
func (e *Engine) GetExecutionReport(orderID string) (domain.ExecutionReport, error) {
	st, err := e.lookup(orderID)
	if err != nil {
		return domain.ExecutionReport{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.report.Snapshot(), nil
}

// GetActiveOrders lists PENDING and RUNNING order ids in submission order.
func (e *Engine) GetActiveOrders() []string {
	e.mu.RLock()
	ids := make([]string, len(e.orderIDs))
	copy(ids, e.orderIDs)
	e.mu.RUnlock()

	active := make([]string, 0, len(ids))
	for _, id := range ids {
		st, err := e.lookup(id)
		if err != nil {
			continue
		}
		st.mu.Lock()
		if st.order.IsActive() {
			active = append(active, id)
		}
		st.mu.Unlock()
	}
	return active
}

// GetExecutionStatistics summarizes engine activity since start.
func (e *Engine) GetExecutionStatistics() Statistics {
	return e.stats.snapshot(len(e.GetActiveOrders()))
}

// Start launches the tick scheduler. Idempotent.
func (e *Engine) Start(ctx context.Context) {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancelRun = cancel
	e.done = make(chan struct{})
	e.running = true
	go e.run(runCtx)
	e.logger.Info("ENGINE: Started", "tick_interval", e.cfg.TickInterval)
}

// Stop cancels every active order, halts the scheduler and waits for
// the current tick to drain. Idempotent.
func (e *Engine) Stop() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if !e.running {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	for _, id := range e.GetActiveOrders() {
		if err := e.CancelOrder(ctx, id); err != nil {
			e.logger.Warn("ENGINE: Cancel On Stop Failed", "order_id", id, "error", err)
		}
	}
	cancel()

	e.cancelRun()
	<-e.done
	e.running = false
	e.logger.Info("ENGINE: Stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runTick(ctx)
		}
	}
}

// runTick activates pending orders, dispatches due slices concurrently
// and settles parent lifecycles. At most one tick runs at a time: if
// venue latency pushes a tick past the interval, the next tick is
// skipped rather than stacked.
func (e *Engine) runTick(ctx context.Context) {
	if !e.tickMu.TryLock() {
		e.logger.Warn("ENGINE: Tick Skipped, Previous Still Running")
		return
	}
	defer e.tickMu.Unlock()

	started := time.Now()
	e.activatePending(started)
	e.dispatchDue(ctx, started.UnixMicro())
	tickDurationMetric.Observe(time.Since(started).Seconds())
}

// activatePending expands PENDING orders into slice schedules.
func (e *Engine) activatePending(now time.Time) {
	for _, st := range e.snapshotStates() {
		st.mu.Lock()
		if st.order.Status != domain.OrderPending {
			st.mu.Unlock()
			continue
		}
		if st.order.Spec.Algorithm == domain.AlgoVWAP {
			e.logger.Warn("ENGINE: VWAP Degraded To Time-Based Schedule, No Volume Profile Available",
				"order_id", st.order.ID)
		}
		slices, err := BuildSlices(st.order.Spec, st.order.ID, now, e.rng)
		if err != nil {
			// Unreachable for validated specs; fail closed if it happens.
			st.order.Status = domain.OrderFailed
			st.report.Finalize(now.UnixMicro())
			snap := st.report.Snapshot()
			id := st.order.ID
			st.mu.Unlock()
			e.settleFailed(id, snap, err.Error())
			continue
		}
		st.slices = slices
		for _, sl := range slices {
			st.order.SliceIDs = append(st.order.SliceIDs, sl.ID)
		}
		st.order.Status = domain.OrderRunning
		st.report.RecordSlices(slices)
		snap := st.report.Snapshot()
		id := st.order.ID
		st.mu.Unlock()

		e.logger.Info("ENGINE: Order Started",
			"order_id", id, "slices", len(slices))
		e.publish(event.OrderStartedEvent{
			BaseEvent:  e.base(id, now.UnixMicro()),
			SliceCount: len(slices),
			Report:     snap,
		})
	}
}

// dispatchDue fans due slices out to the venue, one goroutine each, and
// settles any parent whose last slice went terminal.
func (e *Engine) dispatchDue(ctx context.Context, nowUnixM int64) {
	type workItem struct {
		st *orderState
		sl *domain.Slice
	}
	var due []workItem
	for _, st := range e.snapshotStates() {
		st.mu.Lock()
		if st.order.Status == domain.OrderRunning {
			for _, sl := range st.slices {
				if sl.Due(nowUnixM) {
					due = append(due, workItem{st: st, sl: sl})
				}
			}
		}
		st.mu.Unlock()
	}

	var wg sync.WaitGroup
	for _, item := range due {
		wg.Add(1)
		go func(it workItem) {
			defer wg.Done()
			e.dispatcher.Dispatch(ctx, it.st, it.sl)
			e.recordSliceOutcome(it.sl)
			e.settleIfDone(it.st)
		}(item)
	}
	wg.Wait()
}

func (e *Engine) recordSliceOutcome(sl *domain.Slice) {
	switch sl.Status {
	case domain.SliceFilled:
		e.stats.slicesFilled.Add(1)
		e.stats.filledQtySats.Add(int64(sl.QtySats))
	case domain.SliceFailed:
		e.stats.slicesFailed.Add(1)
	}
}

// settleIfDone closes a RUNNING parent once every slice is terminal:
// COMPLETED if anything filled, FAILED otherwise.
func (e *Engine) settleIfDone(st *orderState) {
	st.mu.Lock()
	if st.order.Status != domain.OrderRunning {
		st.mu.Unlock()
		return
	}
	anyFilled := false
	for _, sl := range st.slices {
		if !sl.Status.IsTerminal() {
			st.mu.Unlock()
			return
		}
		if sl.Status == domain.SliceFilled {
			anyFilled = true
		}
	}

	now := time.Now().UnixMicro()
	if anyFilled {
		st.order.Status = domain.OrderCompleted
	} else {
		st.order.Status = domain.OrderFailed
	}
	st.report.Finalize(now)
	snap := st.report.Snapshot()
	id := st.order.ID
	status := st.order.Status
	st.mu.Unlock()

	if status == domain.OrderCompleted {
		e.stats.ordersCompleted.Add(1)
		ordersTerminalMetric.WithLabelValues(string(status)).Inc()
		activeOrdersMetric.Dec()
		e.logger.Info("ENGINE: Order Completed", "order_id", id,
			"filled_qty", snap.FilledQtySats.String(),
			"avg_fill_price", snap.AvgFillPrice.String())
		e.publish(event.OrderCompletedEvent{BaseEvent: e.base(id, now), Report: snap})
		return
	}
	e.settleFailed(id, snap, "all slices failed")
}

func (e *Engine) settleFailed(id string, snap domain.ExecutionReport, reason string) {
	now := time.Now().UnixMicro()
	e.stats.ordersFailed.Add(1)
	ordersTerminalMetric.WithLabelValues(string(domain.OrderFailed)).Inc()
	activeOrdersMetric.Dec()
	e.logger.Error("ENGINE: Order Failed", "order_id", id, "reason", reason)
	e.publish(event.OrderFailedEvent{
		BaseEvent: e.base(id, now),
		Reason:    reason,
		Report:    snap,
	})
}

func (e *Engine) lookup(orderID string) (*orderState, error) {
	e.mu.RLock()
	st, ok := e.orders[orderID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOrder, orderID)
	}
	return st, nil
}

func (e *Engine) snapshotStates() []*orderState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	states := make([]*orderState, 0, len(e.orderIDs))
	for _, id := range e.orderIDs {
		states = append(states, e.orders[id])
	}
	return states
}

func (e *Engine) base(orderID string, nowUnixM int64) event.BaseEvent {
	return event.BaseEvent{
		Seq:     quant.NextSeq(&e.seq),
		Ts:      quant.TimeStamp(nowUnixM),
		OrderID: orderID,
	}
}

// publish never blocks the hot path: a full buffer drops the event.
func (e *Engine) publish(ev event.Event) {
	select {
	case e.events <- ev:
	default:
		e.logger.Warn("ENGINE_EVENT_DROPPED",
			"type", ev.GetType().String(), "order_id", ev.GetOrderID())
	}
}
