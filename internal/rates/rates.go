package rates

import "FluxLedger/internal/model"

// Calculate derives the protocol ratios from supply sums and peg state.
// Pure: no ledger or config mutation.
//
// Every ratio is defined as exactly 1 when the floating supply is zero, and
// the flux ratio is also 1 when the oracle rate is zero. These fallbacks are
// defined behavior, not error handling.
func Calculate(peggedSupply, floatingSupply, burntStable, oracleRate float64) model.Rates {
	r := model.Rates{ProtocolRate: 1, FluxRatio: 1, ReserveRatio: 1}

	if floatingSupply != 0 {
		r.ProtocolRate = peggedSupply / floatingSupply
		if oracleRate != 0 {
			r.FluxRatio = r.ProtocolRate / oracleRate
		}
		r.ReserveRatio = burntStable / floatingSupply
	}

	// Asymmetric clamp: damp floating-unit issuance only when the market
	// trades above peg while reserves are not yet depleted. The exact
	// boolean condition matters; do not loosen it.
	if r.FluxRatio > 1 && r.ReserveRatio <= 1 {
		r.FluxInfluence = 1.0
	} else {
		r.FluxInfluence = r.FluxRatio
	}
	return r
}

// ProtocolRate computes only the pegged/floating supply ratio, with the same
// zero-supply fallback as Calculate.
func ProtocolRate(peggedSupply, floatingSupply float64) float64 {
	if floatingSupply == 0 {
		return 1
	}
	return peggedSupply / floatingSupply
}
