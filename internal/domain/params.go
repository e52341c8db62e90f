package domain

import (
	"hyperexec/pkg/quant"
)

// AlgoParams is the algorithm-specific parameter bag of an OrderSpec.
// Each algorithm reads only its own fields; the zero value of an unused
// field is ignored.
type AlgoParams struct {
	// TWAP and VWAP
	DurationMinutes int `json:"duration_minutes,omitempty"`
	// TWAP only. 0 means "derive": ceil(DurationMinutes / 5).
	SliceCount int `json:"slice_count,omitempty"`
	// VWAP only. Recorded for reporting; the degraded VWAP ignores it.
	MaxParticipationRate float64 `json:"max_participation_rate,omitempty"`
	// Iceberg only.
	SliceSizeSats quant.QtySats `json:"slice_size,omitempty"`
	// Iceberg only, in [0,1]. Scales each slice by a uniform factor
	// in [1-r/2, 1+r/2].
	Randomization float64 `json:"randomization,omitempty"`
}
