// Package pool implements constant-product liquidity pools between the
// pegged and floating units, and the manager that routes swaps, locked
// provisioning, and yield accrual between pools and the ledger.
package pool

import "FluxLedger/internal/model"

// Direction selects which reserve a swap pays into.
type Direction string

const (
	PeggedToFloating Direction = "PEGGED_TO_FLOATING"
	FloatingToPegged Direction = "FLOATING_TO_PEGGED"
)

// ParseDirection maps a wire tag to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case PeggedToFloating, FloatingToPegged:
		return Direction(s), true
	}
	return "", false
}

// applySwap runs the constant-product formula against the pool and commits
// the new reserves. The fee is deducted from the input before it enters the
// invariant, then retained in the reserves, so the reserve product never
// decreases.
//
// Assumes both reserves are positive; the manager rejects empty pools before
// calling.
func applySwap(p *model.LiquidityPool, amountIn float64, dir Direction) (amountOut, fee float64) {
	fee = amountIn * p.FeeRate
	inAfterFee := amountIn - fee

	var reserveIn, reserveOut float64
	switch dir {
	case PeggedToFloating:
		reserveIn, reserveOut = p.PeggedReserve, p.FloatingReserve
	case FloatingToPegged:
		reserveIn, reserveOut = p.FloatingReserve, p.PeggedReserve
	}

	// k from the pre-swap reserves, before the fee-adjusted input is added.
	k := reserveIn * reserveOut
	newReserveIn := reserveIn + inAfterFee
	newReserveOut := k / newReserveIn
	amountOut = reserveOut - newReserveOut

	switch dir {
	case PeggedToFloating:
		p.PeggedReserve = newReserveIn
		p.FloatingReserve = newReserveOut
	case FloatingToPegged:
		p.FloatingReserve = newReserveIn
		p.PeggedReserve = newReserveOut
	}
	return amountOut, fee
}
