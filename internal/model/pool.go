package model

import "time"

// DefaultFeeRate is the swap fee retained inside a pool's reserves.
const DefaultFeeRate = 0.003

// LiquidityPool is one constant-product market between the pegged and floating
// units. Reserves stay positive while the pool is open; the reserve product
// never decreases across a swap because fees accrue to the reserves.
type LiquidityPool struct {
	ID              string    `json:"id"`
	Owner           string    `json:"owner"`
	PeggedReserve   float64   `json:"pegged_reserve"`
	FloatingReserve float64   `json:"floating_reserve"`
	FeeRate         float64   `json:"fee_rate"`
	UnlockTime      time.Time `json:"unlock_time"`
	CreatedAt       time.Time `json:"created_at"`
}

// Unlockable reports whether the pool's time lock has elapsed. Swaps are
// permitted either way; only withdrawal is gated.
func (p *LiquidityPool) Unlockable(now time.Time) bool {
	return !now.Before(p.UnlockTime)
}
