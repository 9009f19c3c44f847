package pool

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"FluxLedger/internal/ledger"
	"FluxLedger/internal/model"
	"FluxLedger/internal/recorder"
)

var (
	// ErrPoolNotFound is returned when an operation names an unknown pool.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolLocked is returned when withdrawal is attempted before the
	// pool's unlock time.
	ErrPoolLocked = errors.New("pool is time-locked")
	// ErrEmptyPool is returned when a swap targets a pool with a zero
	// reserve; the constant-product formula is undefined there.
	ErrEmptyPool = errors.New("pool has an empty reserve")
	// ErrInsufficientBalance is returned when the account cannot cover the
	// amounts a provide or swap requires.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// YieldAPY is the default annual rate applied by the weekly accrual sweep.
const YieldAPY = 0.05

// Manager owns all open liquidity pools and routes every pool operation
// between the ledger and the pool it targets. Cross-aggregate mutations run
// under the manager mutex, calling into the ledger second, so the lock order
// is fixed.
type Manager struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	pools   map[string]*model.LiquidityPool
	feeRate float64
	rec     recorder.Recorder
}

// NewManager creates a Manager with no open pools. New pools are created with
// feeRate; pass 0 to use the default.
func NewManager(l *ledger.Ledger, feeRate float64, rec recorder.Recorder) *Manager {
	if feeRate == 0 {
		feeRate = model.DefaultFeeRate
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Manager{ledger: l, pools: make(map[string]*model.LiquidityPool), feeRate: feeRate, rec: rec}
}

// Provide creates a new pool funded from the account's free balances and
// locks it for lockDays. The account's free balances drop and its locked
// counters rise by the same amounts. Returns the new pool's identifier.
func (m *Manager) Provide(account string, peggedAmount, floatingAmount float64, lockDays int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, err := m.ledger.View(account)
	if err != nil {
		return "", err
	}
	if acct.Pegged < peggedAmount || acct.Floating < floatingAmount {
		return "", ErrInsufficientBalance
	}

	now := time.Now()
	p := &model.LiquidityPool{
		ID:              uuid.NewString(),
		Owner:           account,
		PeggedReserve:   peggedAmount,
		FloatingReserve: floatingAmount,
		FeeRate:         m.feeRate,
		UnlockTime:      now.Add(time.Duration(lockDays) * 24 * time.Hour),
		CreatedAt:       now,
	}

	if err := m.ledger.Update(account, func(a *model.Account) {
		a.Pegged -= peggedAmount
		a.Floating -= floatingAmount
		a.LockedPegged += peggedAmount
		a.LockedFloating += floatingAmount
	}); err != nil {
		return "", err
	}
	m.pools[p.ID] = p

	if err := m.rec.RecordPoolEvent(&recorder.PoolEvent{
		PoolID:    p.ID,
		Account:   account,
		EventType: "PROVIDE",
		Pegged:    peggedAmount,
		Floating:  floatingAmount,
	}); err != nil {
		log.Printf("[WARN] record pool event: %v", err)
	}
	return p.ID, nil
}

// Withdraw closes a pool once its time lock has elapsed and returns the full
// current reserves to the named account's free balances.
//
// Ownership is NOT verified: any account the caller names receives the funds.
// That matches the reference behavior and is a documented authorization gap,
// kept deliberately. Likewise the locked counters are decremented by the
// current reserves rather than the originally provided amounts, so they can
// drift negative after swaps have moved the reserves.
func (m *Manager) Withdraw(account, poolID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pools[poolID]
	if !ok {
		return fmt.Errorf("pool %q: %w", poolID, ErrPoolNotFound)
	}
	if !p.Unlockable(time.Now()) {
		return fmt.Errorf("pool %q unlocks at %s: %w", poolID, p.UnlockTime.Format(time.RFC3339), ErrPoolLocked)
	}

	pegged, floating := p.PeggedReserve, p.FloatingReserve
	if err := m.ledger.Update(account, func(a *model.Account) {
		a.Pegged += pegged
		a.Floating += floating
		a.LockedPegged -= pegged
		a.LockedFloating -= floating
	}); err != nil {
		return err
	}
	delete(m.pools, poolID)

	if err := m.rec.RecordPoolEvent(&recorder.PoolEvent{
		PoolID:    poolID,
		Account:   account,
		EventType: "WITHDRAW",
		Pegged:    pegged,
		Floating:  floating,
	}); err != nil {
		log.Printf("[WARN] record pool event: %v", err)
	}
	return nil
}

// Swap trades amountIn of the input unit against the pool and credits the
// output to the account. Validates, before the math runs, that both reserves
// are positive and that the account can cover the input.
func (m *Manager) Swap(account, poolID string, amountIn float64, dir Direction) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pools[poolID]
	if !ok {
		return 0, fmt.Errorf("pool %q: %w", poolID, ErrPoolNotFound)
	}
	if p.PeggedReserve <= 0 || p.FloatingReserve <= 0 {
		return 0, ErrEmptyPool
	}

	assetIn, assetOut := model.AssetPegged, model.AssetFloating
	if dir == FloatingToPegged {
		assetIn, assetOut = model.AssetFloating, model.AssetPegged
	}

	acct, err := m.ledger.View(account)
	if err != nil {
		return 0, err
	}
	if acct.Balance(assetIn) < amountIn {
		return 0, ErrInsufficientBalance
	}

	amountOut, fee := applySwap(p, amountIn, dir)

	if err := m.ledger.Update(account, func(a *model.Account) {
		a.Add(assetIn, -amountIn)
		a.Add(assetOut, amountOut)
	}); err != nil {
		return 0, err
	}

	if err := m.rec.RecordSwap(&recorder.SwapEvent{
		PoolID:        poolID,
		Account:       account,
		Direction:     string(dir),
		AmountIn:      amountIn,
		Fee:           fee,
		AmountOut:     amountOut,
		PeggedAfter:   p.PeggedReserve,
		FloatingAfter: p.FloatingReserve,
	}); err != nil {
		log.Printf("[WARN] record swap: %v", err)
	}
	return amountOut, nil
}

// AccrueYieldFor credits one week of yield on the named account's locked
// floating balance: accruedYield += lockedFloating * apy/52. There is no
// timestamp gating, so the caller must invoke it at most once per intended
// period; calling twice in the same week double-counts.
func (m *Manager) AccrueYieldFor(account string, apy float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accrue(account, apy)
}

// AccrueYield runs the weekly accrual across every account and returns the
// total credited. Same gating caveat as AccrueYieldFor.
func (m *Manager) AccrueYield(apy float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	for _, name := range m.ledger.Names() {
		accrued, _ := m.accrue(name, apy)
		total += accrued
	}
	return total
}

// accrue credits one period of yield. Callers must hold m.mu.
func (m *Manager) accrue(account string, apy float64) (float64, error) {
	var accrued float64
	err := m.ledger.Update(account, func(a *model.Account) {
		accrued = a.LockedFloating * (apy / 52)
		a.AccruedYield += accrued
	})
	if err != nil {
		return 0, err
	}
	return accrued, nil
}

// Get returns a copy of the named pool.
func (m *Manager) Get(poolID string) (model.LiquidityPool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pools[poolID]
	if !ok {
		return model.LiquidityPool{}, fmt.Errorf("pool %q: %w", poolID, ErrPoolNotFound)
	}
	return *p, nil
}

// Pools returns copies of all open pools, sorted by creation time.
func (m *Manager) Pools() []model.LiquidityPool {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.LiquidityPool, 0, len(m.pools))
	for _, p := range m.pools {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
