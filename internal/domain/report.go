package domain

import (
	"github.com/shopspring/decimal"

	"hyperexec/pkg/quant"
	"hyperexec/pkg/safe"
)

// SliceRecord is the per-slice line of a report's execution history.
type SliceRecord struct {
	SliceID         string            `json:"slice_id"`
	QtySats         quant.QtySats     `json:"qty"`
	Status          SliceStatus       `json:"status"`
	ScheduledUnixM  int64             `json:"scheduled_unix"`
	FillPriceMicros quant.PriceMicros `json:"fill_price,omitempty"`
	FilledUnixM     int64             `json:"filled_unix,omitempty"`
}

// ExecutionReport is the continuously-updated view of a parent order's
// progress. The weighted average price is accumulated in decimal space:
// the int64 product of PriceMicros and QtySats overflows for realistic
// notionals.
type ExecutionReport struct {
	OrderID          string        `json:"order_id"`
	Symbol           string        `json:"symbol"`
	Side             Side          `json:"side"`
	TotalQtySats     quant.QtySats `json:"total_qty"`
	FilledQtySats    quant.QtySats `json:"filled_qty"`
	RemainingQtySats quant.QtySats `json:"remaining_qty"`

	// Volume-weighted average fill price in quote units.
	AvgFillPrice decimal.Decimal `json:"avg_fill_price"`
	// Mark price at submission time, if a feed was available. Zero means
	// slippage is not computable.
	ArrivalPriceMicros quant.PriceMicros `json:"arrival_price,omitempty"`
	// Signed execution cost vs arrival price in basis points; positive is
	// adverse for the order's side. Nil until computable.
	SlippageBps *decimal.Decimal `json:"slippage_bps,omitempty"`

	StartUnixM int64 `json:"start_unix"`
	EndUnixM   int64 `json:"end_unix,omitempty"`

	Slices []SliceRecord `json:"slices"`

	notional decimal.Decimal // Σ fill_price * fill_qty, quote units
}

// NewExecutionReport creates the report that accompanies a freshly
// accepted order.
func NewExecutionReport(orderID string, spec OrderSpec, arrival quant.PriceMicros, nowUnixM int64) *ExecutionReport {
	return &ExecutionReport{
		OrderID:            orderID,
		Symbol:             spec.Symbol,
		Side:               spec.Side,
		TotalQtySats:       spec.QtySats,
		RemainingQtySats:   spec.QtySats,
		ArrivalPriceMicros: arrival,
		StartUnixM:         nowUnixM,
	}
}

// RecordSlices appends the freshly built schedule to the history.
// Called once, when the scheduler activates the order.
func (r *ExecutionReport) RecordSlices(slices []*Slice) {
	for _, s := range slices {
		r.Slices = append(r.Slices, SliceRecord{
			SliceID:        s.ID,
			QtySats:        s.QtySats,
			Status:         s.Status,
			ScheduledUnixM: s.ScheduledUnixM,
		})
	}
}

// RecordFill folds one filled slice into the aggregate view.
func (r *ExecutionReport) RecordFill(s *Slice) {
	r.FilledQtySats = quant.QtySats(safe.SafeAdd(int64(r.FilledQtySats), int64(s.QtySats)))
	r.RemainingQtySats = quant.QtySats(safe.SafeSub(int64(r.TotalQtySats), int64(r.FilledQtySats)))
	r.notional = r.notional.Add(quant.Notional(s.FillPriceMicros, s.QtySats))
	r.AvgFillPrice = r.notional.Div(r.FilledQtySats.Decimal())
	r.updateSlice(s)
	r.updateSlippage()
}

// RecordSliceState refreshes the history line of a non-filled transition.
func (r *ExecutionReport) RecordSliceState(s *Slice) {
	r.updateSlice(s)
}

// Finalize stamps the closing timestamp. The report is immutable after
// this, per the order lifecycle.
func (r *ExecutionReport) Finalize(nowUnixM int64) {
	if r.EndUnixM == 0 {
		r.EndUnixM = nowUnixM
	}
}

func (r *ExecutionReport) updateSlice(s *Slice) {
	for i := range r.Slices {
		if r.Slices[i].SliceID == s.ID {
			r.Slices[i].Status = s.Status
			r.Slices[i].FillPriceMicros = s.FillPriceMicros
			r.Slices[i].FilledUnixM = s.FilledUnixM
			return
		}
	}
}

// updateSlippage recomputes execution cost vs the arrival price.
// slippage_bps = sign * (avg - arrival) / arrival * 10000, where sign
// flips for sells so that positive always means adverse.
func (r *ExecutionReport) updateSlippage() {
	if r.ArrivalPriceMicros <= 0 || r.FilledQtySats <= 0 {
		return
	}
	arrival := r.ArrivalPriceMicros.Decimal()
	bps := r.AvgFillPrice.Sub(arrival).Div(arrival).Mul(decimal.NewFromInt(10000))
	if r.Side == SideSell {
		bps = bps.Neg()
	}
	r.SlippageBps = &bps
}

// Snapshot returns a deep copy safe to hand to observers.
func (r *ExecutionReport) Snapshot() ExecutionReport {
	cp := *r
	cp.Slices = make([]SliceRecord, len(r.Slices))
	copy(cp.Slices, r.Slices)
	if r.SlippageBps != nil {
		bps := *r.SlippageBps
		cp.SlippageBps = &bps
	}
	return cp
}
