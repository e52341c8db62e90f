// Package execution implements the smart execution engine: a parent
// trading instruction is expanded into a schedule of child slices which
// are dispatched to the venue on the engine's clock.
package execution

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"hyperexec/internal/domain"
	"hyperexec/pkg/quant"
	"hyperexec/pkg/safe"
)

const (
	// Derived TWAP slice granularity when the caller gives no count.
	defaultTWAPSliceMinutes = 5
	// Fixed granularity of the degraded VWAP schedule.
	vwapSliceMinutes = 10
	// Gap between consecutive iceberg slices.
	icebergIntervalMicros = int64(time.Second / time.Microsecond)

	minuteMicros = int64(time.Minute / time.Microsecond)
)

// sliceFunc expands a validated spec into a schedule anchored at now.
type sliceFunc func(spec domain.OrderSpec, orderID string, now time.Time, rng *rand.Rand) []*domain.Slice

// sliceTable is the closed algorithm set. Submission validation rejects
// anything not present here, so lookups never miss at dispatch time.
var sliceTable = map[domain.Algorithm]sliceFunc{
	domain.AlgoImmediate: immediateSlices,
	domain.AlgoTWAP:      twapSlices,
	domain.AlgoVWAP:      vwapSlices,
	domain.AlgoIceberg:   icebergSlices,
}

// BuildSlices is a pure function: no I/O, no engine state. The sum of
// slice quantities always equals the parent quantity exactly; the final
// slice absorbs any integer-division remainder.
func BuildSlices(spec domain.OrderSpec, orderID string, now time.Time, rng *rand.Rand) ([]*domain.Slice, error) {
	fn, ok := sliceTable[spec.Algorithm]
	if !ok {
		return nil, fmt.Errorf("no slicer for algorithm %q", spec.Algorithm)
	}
	return fn(spec, orderID, now, rng), nil
}

func newSlice(spec domain.OrderSpec, orderID string, idx int, qty quant.QtySats, scheduledUnixM int64) *domain.Slice {
	return &domain.Slice{
		ID:             fmt.Sprintf("%s/%d", orderID, idx),
		OrderID:        orderID,
		QtySats:        qty,
		PriceMicros:    spec.LimitPriceMicros, // 0 for market parents
		ScheduledUnixM: scheduledUnixM,
		Status:         domain.SlicePending,
	}
}

// immediateSlices: the whole quantity, scheduled now.
func immediateSlices(spec domain.OrderSpec, orderID string, now time.Time, _ *rand.Rand) []*domain.Slice {
	return []*domain.Slice{newSlice(spec, orderID, 0, spec.QtySats, now.UnixMicro())}
}

// twapSlices spreads the quantity evenly across the duration.
// Without an explicit count, one slice per 5 minutes.
func twapSlices(spec domain.OrderSpec, orderID string, now time.Time, _ *rand.Rand) []*domain.Slice {
	count := int64(spec.Params.SliceCount)
	if count == 0 {
		count = safe.CeilDiv(int64(spec.Params.DurationMinutes), defaultTWAPSliceMinutes)
	}
	return evenSchedule(spec, orderID, now, count)
}

// vwapSlices degrades to an even schedule at a fixed 10-minute
// granularity: there is no historical volume profile collaborator yet,
// and downstream reporting relies on slicing staying deterministic for
// a given input. MaxParticipationRate is carried on the order for that
// future collaborator and deliberately unused here.
func vwapSlices(spec domain.OrderSpec, orderID string, now time.Time, _ *rand.Rand) []*domain.Slice {
	count := safe.CeilDiv(int64(spec.Params.DurationMinutes), vwapSliceMinutes)
	return evenSchedule(spec, orderID, now, count)
}

func evenSchedule(spec domain.OrderSpec, orderID string, now time.Time, count int64) []*domain.Slice {
	total := int64(spec.QtySats)
	per := safe.SafeDiv(total, count)
	durationMicros := safe.SafeMul(int64(spec.Params.DurationMinutes), minuteMicros)
	interval := safe.SafeDiv(durationMicros, count)
	startUnixM := now.UnixMicro()

	slices := make([]*domain.Slice, 0, count)
	assigned := int64(0)
	for i := int64(0); i < count; i++ {
		qty := per
		if i == count-1 {
			qty = safe.SafeSub(total, assigned) // remainder absorption
		}
		assigned = safe.SafeAdd(assigned, qty)
		at := safe.SafeAdd(startUnixM, safe.SafeMul(i, interval))
		slices = append(slices, newSlice(spec, orderID, int(i), quant.QtySats(qty), at))
	}
	return slices
}

// icebergSlices peels off sliceSize at a time, one second apart, with
// optional uniform randomization in [1-r/2, 1+r/2]. The loop invariant
// is remaining_after = remaining_before - slice_qty, never negative.
func icebergSlices(spec domain.OrderSpec, orderID string, now time.Time, rng *rand.Rand) []*domain.Slice {
	remaining := int64(spec.QtySats)
	sliceSize := int64(spec.Params.SliceSizeSats)
	r := spec.Params.Randomization
	startUnixM := now.UnixMicro()

	var slices []*domain.Slice
	for i := 0; remaining > 0; i++ {
		qty := sliceSize
		if qty > remaining {
			qty = remaining
		}
		if r > 0 && rng != nil {
			factor := 1 + r*(rng.Float64()-0.5)
			qty = int64(math.Round(float64(qty) * factor))
			if qty < 1 {
				qty = 1
			}
			if qty > remaining {
				qty = remaining
			}
		}
		remaining = safe.SafeSub(remaining, qty)
		at := safe.SafeAdd(startUnixM, safe.SafeMul(int64(i), icebergIntervalMicros))
		slices = append(slices, newSlice(spec, orderID, i, quant.QtySats(qty), at))
	}
	return slices
}
