package execution

import (
	"hyperexec/internal/domain"
)

// ValidateSpec rejects a malformed spec before any slice is built.
// Validation failures are the only synchronous error path of submission;
// everything after acceptance surfaces through the report instead.
func ValidateSpec(spec domain.OrderSpec) error {
	if spec.Symbol == "" {
		return &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	switch spec.Side {
	case domain.SideBuy, domain.SideSell:
	default:
		return &domain.ValidationError{Field: "side", Reason: "must be BUY or SELL"}
	}
	switch spec.Kind {
	case domain.KindMarket:
		if spec.LimitPriceMicros != 0 {
			return &domain.ValidationError{Field: "limit_price", Reason: "must be unset for market orders"}
		}
	case domain.KindLimit:
		if spec.LimitPriceMicros <= 0 {
			return &domain.ValidationError{Field: "limit_price", Reason: "must be positive for limit orders"}
		}
	default:
		return &domain.ValidationError{Field: "kind", Reason: "must be MARKET or LIMIT"}
	}
	if spec.QtySats <= 0 {
		return &domain.ValidationError{Field: "qty", Reason: "must be positive"}
	}
	switch spec.TimeInForce {
	case "", domain.TIFGtc, domain.TIFIoc, domain.TIFAlo:
	default:
		return &domain.ValidationError{Field: "time_in_force", Reason: "must be GTC, IOC or ALO"}
	}
	return validateAlgoParams(spec)
}

func validateAlgoParams(spec domain.OrderSpec) error {
	p := spec.Params
	switch spec.Algorithm {
	case domain.AlgoImmediate:
		return nil
	case domain.AlgoTWAP:
		if p.DurationMinutes <= 0 {
			return &domain.ValidationError{Field: "duration_minutes", Reason: "must be positive for TWAP"}
		}
		if p.SliceCount < 0 {
			return &domain.ValidationError{Field: "slice_count", Reason: "must be at least 1 when set"}
		}
		count := int64(p.SliceCount)
		if count == 0 {
			count = (int64(p.DurationMinutes) + defaultTWAPSliceMinutes - 1) / defaultTWAPSliceMinutes
		}
		if count > int64(spec.QtySats) {
			return &domain.ValidationError{Field: "slice_count", Reason: "exceeds order quantity at minimum lot"}
		}
		return nil
	case domain.AlgoVWAP:
		if p.DurationMinutes <= 0 {
			return &domain.ValidationError{Field: "duration_minutes", Reason: "must be positive for VWAP"}
		}
		if p.MaxParticipationRate < 0 || p.MaxParticipationRate > 1 {
			return &domain.ValidationError{Field: "max_participation_rate", Reason: "must be within [0, 1]"}
		}
		count := (int64(p.DurationMinutes) + vwapSliceMinutes - 1) / vwapSliceMinutes
		if count > int64(spec.QtySats) {
			return &domain.ValidationError{Field: "duration_minutes", Reason: "derived slice count exceeds order quantity at minimum lot"}
		}
		return nil
	case domain.AlgoIceberg:
		if p.SliceSizeSats <= 0 {
			return &domain.ValidationError{Field: "slice_size", Reason: "must be positive for ICEBERG"}
		}
		if p.SliceSizeSats >= spec.QtySats {
			return &domain.ValidationError{Field: "slice_size", Reason: "must be smaller than order quantity"}
		}
		if p.Randomization < 0 || p.Randomization > 1 {
			return &domain.ValidationError{Field: "randomization", Reason: "must be within [0, 1]"}
		}
		return nil
	default:
		return &domain.ValidationError{Field: "algorithm", Reason: "unknown algorithm"}
	}
}
