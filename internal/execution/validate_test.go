package execution

import (
	"errors"
	"testing"

	"hyperexec/internal/domain"
	"hyperexec/pkg/quant"
)

func TestValidateSpec(t *testing.T) {
	valid := domain.OrderSpec{
		Symbol:    "ETH",
		Side:      domain.SideBuy,
		Kind:      domain.KindMarket,
		QtySats:   quant.ToQtySats(1.0),
		Algorithm: domain.AlgoImmediate,
	}

	tests := []struct {
		name    string
		mutate  func(*domain.OrderSpec)
		wantErr bool
	}{
		{"valid immediate", func(s *domain.OrderSpec) {}, false},
		{"empty symbol", func(s *domain.OrderSpec) { s.Symbol = "" }, true},
		{"bad side", func(s *domain.OrderSpec) { s.Side = "LONG" }, true},
		{"bad kind", func(s *domain.OrderSpec) { s.Kind = "STOP" }, true},
		{"zero qty", func(s *domain.OrderSpec) { s.QtySats = 0 }, true},
		{"negative qty", func(s *domain.OrderSpec) { s.QtySats = -1 }, true},
		{"market with limit price", func(s *domain.OrderSpec) { s.LimitPriceMicros = quant.ToPriceMicros(100) }, true},
		{"limit without price", func(s *domain.OrderSpec) { s.Kind = domain.KindLimit }, true},
		{"limit with price", func(s *domain.OrderSpec) {
			s.Kind = domain.KindLimit
			s.LimitPriceMicros = quant.ToPriceMicros(3000)
		}, false},
		{"bad tif", func(s *domain.OrderSpec) { s.TimeInForce = "FOK" }, true},
		{"unknown algorithm", func(s *domain.OrderSpec) { s.Algorithm = "POV" }, true},

		{"twap ok", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoTWAP
			s.Params.DurationMinutes = 10
			s.Params.SliceCount = 2
		}, false},
		{"twap zero duration", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoTWAP
		}, true},
		{"twap negative count", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoTWAP
			s.Params.DurationMinutes = 10
			s.Params.SliceCount = -1
		}, true},
		{"twap more slices than sats", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoTWAP
			s.QtySats = 3
			s.Params.DurationMinutes = 10
			s.Params.SliceCount = 5
		}, true},

		{"vwap ok", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoVWAP
			s.Params.DurationMinutes = 30
			s.Params.MaxParticipationRate = 0.25
		}, false},
		{"vwap zero duration", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoVWAP
		}, true},
		{"vwap dust quantity below slice count", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoVWAP
			s.QtySats = 5
			s.Params.DurationMinutes = 100 // derives 10 slices for 5 sats
		}, true},
		{"vwap participation above one", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoVWAP
			s.Params.DurationMinutes = 30
			s.Params.MaxParticipationRate = 1.5
		}, true},

		{"iceberg ok", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoIceberg
			s.Params.SliceSizeSats = quant.ToQtySats(0.2)
		}, false},
		{"iceberg zero slice size", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoIceberg
		}, true},
		{"iceberg slice size equals qty", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoIceberg
			s.Params.SliceSizeSats = s.QtySats
		}, true},
		{"iceberg randomization above one", func(s *domain.OrderSpec) {
			s.Algorithm = domain.AlgoIceberg
			s.Params.SliceSizeSats = quant.ToQtySats(0.2)
			s.Params.Randomization = 1.2
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			err := ValidateSpec(spec)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error is %T, want *domain.ValidationError", err)
				}
			}
		})
	}
}
