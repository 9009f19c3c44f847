// Package engine implements the stable-unit conversion engine and owns the
// peg configuration singleton.
package engine

import (
	"errors"
	"log"
	"sync"

	"FluxLedger/internal/ledger"
	"FluxLedger/internal/model"
	"FluxLedger/internal/rates"
	"FluxLedger/internal/recorder"
)

// ErrInsufficientBalance is the expected failure of a backward conversion:
// the account cannot cover the pegged and floating amounts required. No
// mutation occurs.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Engine performs stable ⇄ (pegged, floating) conversions against the ledger
// and the peg config. Each conversion's mutation group commits as one unit
// under the engine mutex.
type Engine struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	cfg    *model.PegConfig
	rec    recorder.Recorder
}

// New creates an Engine. The peg config singleton is created lazily on first
// access with its documented defaults.
func New(l *ledger.Ledger, rec recorder.Recorder) *Engine {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Engine{ledger: l, rec: rec}
}

// config returns the singleton, creating it with defaults if absent.
// Callers must hold e.mu.
func (e *Engine) config() *model.PegConfig {
	if e.cfg == nil {
		e.cfg = model.NewPegConfig()
	}
	return e.cfg
}

// OracleRate returns the current oracle rate, initializing the config
// singleton with defaults if it does not exist yet.
func (e *Engine) OracleRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config().OracleRate
}

// SetOracleRate replaces the oracle rate, initializing the config singleton
// if absent.
func (e *Engine) SetOracleRate(rate float64, source string) {
	e.mu.Lock()
	cfg := e.config()
	old := cfg.OracleRate
	cfg.OracleRate = rate
	e.mu.Unlock()

	if err := e.rec.RecordOracleUpdate(&recorder.OracleEvent{OldRate: old, NewRate: rate, Source: source}); err != nil {
		log.Printf("[WARN] record oracle update: %v", err)
	}
}

// BurntStableSupply returns the running total of stable units consumed by
// forward conversions.
func (e *Engine) BurntStableSupply() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config().BurntStableSupply
}

// CurrentRates computes the protocol ratios from current ledger and config
// state using the stored oracle rate.
func (e *Engine) CurrentRates() model.Rates {
	_, pegged, floating := e.ledger.TotalSupplies()

	e.mu.Lock()
	cfg := e.config()
	burnt, oracle := cfg.BurntStableSupply, cfg.OracleRate
	e.mu.Unlock()

	return rates.Calculate(pegged, floating, burnt, oracle)
}

// ConvertForward converts amount stable units into pegged and floating units
// at the supplied oracle rate. The caller must have verified the account
// holds at least amount stable units: the engine performs no re-validation
// and will drive the balance negative if the contract is violated.
//
// Ratios are computed from the pre-mutation ledger state, with the account's
// own balances still included. The four mutations (stable down, pegged up,
// floating up, burnt supply up) commit as one group.
func (e *Engine) ConvertForward(account string, amount, oracleRate float64) error {
	_, pegged, floating := e.ledger.TotalSupplies()

	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.config()
	r := rates.Calculate(pegged, floating, cfg.BurntStableSupply, oracleRate)

	err := e.ledger.Update(account, func(a *model.Account) {
		a.Stable -= amount
		a.Pegged += amount * oracleRate
		a.Floating += amount * r.FluxInfluence
	})
	if err != nil {
		return err
	}
	cfg.BurntStableSupply += amount

	if err := e.rec.RecordConversion(&recorder.ConversionEvent{
		Account:       account,
		Direction:     "FORWARD",
		StableAmount:  amount,
		OracleRate:    oracleRate,
		FluxInfluence: r.FluxInfluence,
		ProtocolRate:  r.ProtocolRate,
		BurntAfter:    cfg.BurntStableSupply,
	}); err != nil {
		log.Printf("[WARN] record conversion: %v", err)
	}
	return nil
}

// ConvertBackward redeems stableAmount stable units by burning
// stableAmount * protocolRate pegged units and stableAmount floating units
// (the floating unit is 1:1 with the stable unit's face value). Returns
// ErrInsufficientBalance, with no mutation, when the account cannot cover
// both amounts.
func (e *Engine) ConvertBackward(account string, stableAmount float64) error {
	_, pegged, floating := e.ledger.TotalSupplies()
	protocolRate := rates.ProtocolRate(pegged, floating)

	peggedNeeded := stableAmount * protocolRate
	floatingNeeded := stableAmount

	e.mu.Lock()
	defer e.mu.Unlock()

	acct, err := e.ledger.View(account)
	if err != nil {
		return err
	}
	if acct.Pegged < peggedNeeded || acct.Floating < floatingNeeded {
		return ErrInsufficientBalance
	}

	if err := e.ledger.Update(account, func(a *model.Account) {
		a.Pegged -= peggedNeeded
		a.Floating -= floatingNeeded
		a.Stable += stableAmount
	}); err != nil {
		return err
	}
	cfg := e.config()
	cfg.BurntStableSupply -= stableAmount

	if err := e.rec.RecordConversion(&recorder.ConversionEvent{
		Account:      account,
		Direction:    "BACKWARD",
		StableAmount: stableAmount,
		OracleRate:   cfg.OracleRate,
		ProtocolRate: protocolRate,
		BurntAfter:   cfg.BurntStableSupply,
	}); err != nil {
		log.Printf("[WARN] record conversion: %v", err)
	}
	return nil
}

// Transfer moves amount of asset between accounts and journals it. The move
// itself is unconditional; sufficiency pre-checks belong to the caller.
func (e *Engine) Transfer(from, to string, asset model.Asset, amount float64) error {
	if err := e.ledger.Transfer(from, to, asset, amount); err != nil {
		return err
	}
	if err := e.rec.RecordTransfer(&recorder.TransferEvent{From: from, To: to, Asset: asset, Amount: amount}); err != nil {
		log.Printf("[WARN] record transfer: %v", err)
	}
	return nil
}
