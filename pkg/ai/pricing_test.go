package ai

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEstimateCostZeroTokens(t *testing.T) {
	if got := EstimateCost(0, 0); !got.Equal(decimal.Zero) {
		t.Fatalf("EstimateCost(0, 0) = %s, want 0", got)
	}
}

func TestEstimateCostKnownValues(t *testing.T) {
	cases := []struct {
		input, output int
		want          string
	}{
		{1_000_000, 0, "3.00"},
		{0, 1_000_000, "15.00"},
		{1_000_000, 1_000_000, "18.00"},
		{500, 100, "0.003"},
		{333, 0, "0.000999"},
	}
	for _, tc := range cases {
		want := decimal.RequireFromString(tc.want)
		if got := EstimateCost(tc.input, tc.output); !got.Equal(want) {
			t.Fatalf("EstimateCost(%d, %d) = %s, want %s", tc.input, tc.output, got, want)
		}
	}
}

func TestEstimateCostMonotonic(t *testing.T) {
	base := EstimateCost(1000, 1000)
	if EstimateCost(2000, 1000).LessThan(base) {
		t.Fatalf("cost should not decrease when input tokens grow")
	}
	if EstimateCost(1000, 2000).LessThan(base) {
		t.Fatalf("cost should not decrease when output tokens grow")
	}
}
