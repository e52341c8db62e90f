package event

import (
	"hyperexec/internal/domain"
	"hyperexec/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvOrderSubmitted Type = iota + 1
	EvOrderStarted
	EvOrderCompleted
	EvOrderCancelled
	EvOrderFailed
)

func (t Type) String() string {
	switch t {
	case EvOrderSubmitted:
		return "ORDER_SUBMITTED"
	case EvOrderStarted:
		return "ORDER_STARTED"
	case EvOrderCompleted:
		return "ORDER_COMPLETED"
	case EvOrderCancelled:
		return "ORDER_CANCELLED"
	case EvOrderFailed:
		return "ORDER_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Event is the interface for all engine notifications.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
	GetOrderID() string
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq     uint64          `json:"seq"`
	Ts      quant.TimeStamp `json:"ts"`
	OrderID string          `json:"order_id"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }
func (e BaseEvent) GetOrderID() string     { return e.OrderID }

// OrderSubmittedEvent fires when a spec passes validation and an order
// is created in PENDING state.
type OrderSubmittedEvent struct {
	BaseEvent
	Report domain.ExecutionReport `json:"report"`
}

func (e OrderSubmittedEvent) GetType() Type { return EvOrderSubmitted }

// OrderStartedEvent fires when the scheduler produces slices and the
// order transitions to RUNNING.
type OrderStartedEvent struct {
	BaseEvent
	SliceCount int                    `json:"slice_count"`
	Report     domain.ExecutionReport `json:"report"`
}

func (e OrderStartedEvent) GetType() Type { return EvOrderStarted }

// OrderCompletedEvent fires when every slice is terminal and at least
// one filled.
type OrderCompletedEvent struct {
	BaseEvent
	Report domain.ExecutionReport `json:"report"`
}

func (e OrderCompletedEvent) GetType() Type { return EvOrderCompleted }

// OrderCancelledEvent fires on explicit cancellation.
type OrderCancelledEvent struct {
	BaseEvent
	Report domain.ExecutionReport `json:"report"`
}

func (e OrderCancelledEvent) GetType() Type { return EvOrderCancelled }

// OrderFailedEvent fires when every slice is terminal and none filled.
type OrderFailedEvent struct {
	BaseEvent
	Reason string                 `json:"reason,omitempty"`
	Report domain.ExecutionReport `json:"report"`
}

func (e OrderFailedEvent) GetType() Type { return EvOrderFailed }
