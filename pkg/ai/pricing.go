package ai

import "github.com/shopspring/decimal"

// Per-million-token rates for the configured completion model.
var (
	inputRatePerMillion  = decimal.RequireFromString("3.00")
	outputRatePerMillion = decimal.RequireFromString("15.00")
	millionTokens        = decimal.NewFromInt(1_000_000)
)

// EstimateCost converts token usage into a monetary estimate, rounded to six
// decimal places. Zero tokens cost zero.
func EstimateCost(inputTokens, outputTokens int) decimal.Decimal {
	inputCost := decimal.NewFromInt(int64(inputTokens)).Mul(inputRatePerMillion).Div(millionTokens)
	outputCost := decimal.NewFromInt(int64(outputTokens)).Mul(outputRatePerMillion).Div(millionTokens)
	return inputCost.Add(outputCost).Round(6)
}
