package model

import "fmt"

// Asset identifies one of the three fungible units an account can hold.
type Asset string

const (
	AssetStable   Asset = "stable"
	AssetPegged   Asset = "pegged"
	AssetFloating Asset = "floating"
)

// ParseAsset maps a wire tag to an Asset.
func ParseAsset(s string) (Asset, error) {
	switch Asset(s) {
	case AssetStable, AssetPegged, AssetFloating:
		return Asset(s), nil
	}
	return "", fmt.Errorf("unknown asset %q", s)
}

// Account holds one participant's balances. Free balances are mutated only by
// engine operations; locked counters track amounts committed to liquidity pools.
type Account struct {
	Name           string  `json:"name"`
	Stable         float64 `json:"stable"`
	Pegged         float64 `json:"pegged"`
	Floating       float64 `json:"floating"`
	LockedPegged   float64 `json:"locked_pegged"`
	LockedFloating float64 `json:"locked_floating"`
	AccruedYield   float64 `json:"accrued_yield"`
}

// Balance returns the free balance for the given asset.
func (a *Account) Balance(asset Asset) float64 {
	switch asset {
	case AssetStable:
		return a.Stable
	case AssetPegged:
		return a.Pegged
	case AssetFloating:
		return a.Floating
	}
	return 0
}

// Add moves the free balance for the given asset by delta. Negative deltas are
// not rejected here: sufficiency is a caller-side contract.
func (a *Account) Add(asset Asset, delta float64) {
	switch asset {
	case AssetStable:
		a.Stable += delta
	case AssetPegged:
		a.Pegged += delta
	case AssetFloating:
		a.Floating += delta
	}
}
