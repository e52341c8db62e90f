package domain

import (
	"hyperexec/pkg/quant"
)

// Side is the direction of a parent order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Kind distinguishes market and limit orders.
type Kind string

const (
	KindMarket Kind = "MARKET"
	KindLimit  Kind = "LIMIT"
)

// TimeInForce mirrors the venue's resting-order policies.
type TimeInForce string

const (
	TIFGtc TimeInForce = "GTC"
	TIFIoc TimeInForce = "IOC"
	TIFAlo TimeInForce = "ALO"
)

// Algorithm selects the slicing strategy for a parent order.
// This is a closed set; the engine rejects anything else at submission.
type Algorithm string

const (
	AlgoImmediate Algorithm = "IMMEDIATE"
	AlgoTWAP      Algorithm = "TWAP"
	AlgoVWAP      Algorithm = "VWAP"
	AlgoIceberg   Algorithm = "ICEBERG"
)

// OrderStatus is the parent-order state machine:
// PENDING -> RUNNING -> {COMPLETED | CANCELLED | FAILED}.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderRunning   OrderStatus = "RUNNING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderFailed    OrderStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled || s == OrderFailed
}

// OrderSpec is the caller-supplied parent instruction.
// All monetary values are strictly int64 fixed-point.
type OrderSpec struct {
	Symbol           string            `json:"symbol"`
	Side             Side              `json:"side"`
	Kind             Kind              `json:"kind"`
	QtySats          quant.QtySats     `json:"qty"`
	LimitPriceMicros quant.PriceMicros `json:"limit_price,omitempty"` // 0 for market orders
	TimeInForce      TimeInForce       `json:"time_in_force,omitempty"`
	Algorithm        Algorithm         `json:"algorithm"`
	Params           AlgoParams        `json:"params"`
	ReduceOnly       bool              `json:"reduce_only,omitempty"`
}

// Order is an accepted parent instruction owned by the engine.
// Children are referenced by id, never by pointer, so discarding the
// order's index entry releases the whole family.
type Order struct {
	ID           string      `json:"id"`
	Spec         OrderSpec   `json:"spec"`
	Status       OrderStatus `json:"status"`
	CreatedUnixM int64       `json:"created_unix"` // Unix Microseconds
	SliceIDs     []string    `json:"slice_ids"`
}

// IsActive reports whether the order still participates in scheduling.
func (o *Order) IsActive() bool {
	return o.Status == OrderPending || o.Status == OrderRunning
}
