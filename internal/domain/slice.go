package domain

import (
	"hyperexec/pkg/quant"
)

// SliceStatus is the child-order state machine:
// PENDING -> SUBMITTED -> {FILLED | CANCELLED | FAILED}.
// Terminal states are final; a slice is never re-dispatched.
type SliceStatus string

const (
	SlicePending   SliceStatus = "PENDING"
	SliceSubmitted SliceStatus = "SUBMITTED"
	SliceFilled    SliceStatus = "FILLED"
	SliceCancelled SliceStatus = "CANCELLED"
	SliceFailed    SliceStatus = "FAILED"
)

// IsTerminal reports whether the slice has reached a final state.
func (s SliceStatus) IsTerminal() bool {
	return s == SliceFilled || s == SliceCancelled || s == SliceFailed
}

// Slice is one scheduled fragment of a parent order. It points back to
// its parent by id only.
type Slice struct {
	ID             string            `json:"id"`
	OrderID        string            `json:"order_id"`
	QtySats        quant.QtySats     `json:"qty"`
	PriceMicros    quant.PriceMicros `json:"price,omitempty"` // 0 dispatches as a market order
	ScheduledUnixM int64             `json:"scheduled_unix"`  // Unix Microseconds
	Status         SliceStatus       `json:"status"`

	// Set by the dispatcher after a venue round trip.
	VenueOrderID    uint64            `json:"venue_order_id,omitempty"`
	FillPriceMicros quant.PriceMicros `json:"fill_price,omitempty"`
	FilledUnixM     int64             `json:"filled_unix,omitempty"`
	FailReason      string            `json:"fail_reason,omitempty"`
}

// Due reports whether the slice is ready for dispatch at nowUnixM.
func (s *Slice) Due(nowUnixM int64) bool {
	return s.Status == SlicePending && s.ScheduledUnixM <= nowUnixM
}
