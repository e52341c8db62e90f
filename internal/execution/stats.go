package execution

import (
	"sync/atomic"

	"hyperexec/pkg/quant"
)

// Statistics is a point-in-time summary of the engine's activity since
// start. Counters are cumulative; ActiveOrders is instantaneous.
type Statistics struct {
	OrdersSubmitted int64 `json:"orders_submitted"`
	OrdersCompleted int64 `json:"orders_completed"`
	OrdersCancelled int64 `json:"orders_cancelled"`
	OrdersFailed    int64 `json:"orders_failed"`
	ActiveOrders    int   `json:"active_orders"`

	SlicesFilled int64 `json:"slices_filled"`
	SlicesFailed int64 `json:"slices_failed"`

	TotalFilledQtySats quant.QtySats `json:"total_filled_qty"`
}

// counters holds the engine's atomic tallies; read via snapshot only.
type counters struct {
	ordersSubmitted atomic.Int64
	ordersCompleted atomic.Int64
	ordersCancelled atomic.Int64
	ordersFailed    atomic.Int64
	slicesFilled    atomic.Int64
	slicesFailed    atomic.Int64
	filledQtySats   atomic.Int64
}

func (c *counters) snapshot(active int) Statistics {
	return Statistics{
		OrdersSubmitted:    c.ordersSubmitted.Load(),
		OrdersCompleted:    c.ordersCompleted.Load(),
		OrdersCancelled:    c.ordersCancelled.Load(),
		OrdersFailed:       c.ordersFailed.Load(),
		ActiveOrders:       active,
		SlicesFilled:       c.slicesFilled.Load(),
		SlicesFailed:       c.slicesFailed.Load(),
		TotalFilledQtySats: quant.QtySats(c.filledQtySats.Load()),
	}
}
