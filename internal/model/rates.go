package model

// Rates holds the dimensionless ratios derived from ledger and peg state.
// All fields fall back to 1 when the floating supply is zero; the fallback is
// defined behavior, not an error.
type Rates struct {
	ProtocolRate  float64 `json:"protocol_rate"`
	FluxRatio     float64 `json:"flux_ratio"`
	ReserveRatio  float64 `json:"reserve_ratio"`
	FluxInfluence float64 `json:"flux_influence"`
}
