package engine

import (
	"errors"
	"math"
	"testing"

	"FluxLedger/internal/ledger"
	"FluxLedger/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	if err := l.CreateAccount("Alice", 1000); err != nil {
		t.Fatal(err)
	}
	if err := l.CreateAccount("Bob", 500); err != nil {
		t.Fatal(err)
	}
	return New(l, nil), l
}

func TestOracleRate_DefaultOnFirstAccess(t *testing.T) {
	eng, _ := newTestEngine(t)
	if got := eng.OracleRate(); got != model.DefaultOracleRate {
		t.Errorf("expected default oracle rate %v, got %v", model.DefaultOracleRate, got)
	}
	if got := eng.BurntStableSupply(); got != 0 {
		t.Errorf("expected zero burnt supply, got %v", got)
	}
}

func TestConvertForward_FirstConversion(t *testing.T) {
	eng, l := newTestEngine(t)

	// No floating supply exists yet, so the flux influence falls back to 1.
	if err := eng.ConvertForward("Alice", 100, 128); err != nil {
		t.Fatalf("convert forward: %v", err)
	}

	alice, _ := l.View("Alice")
	if alice.Stable != 900 {
		t.Errorf("stable: expected 900, got %v", alice.Stable)
	}
	if alice.Pegged != 12800 {
		t.Errorf("pegged: expected 12800, got %v", alice.Pegged)
	}
	if alice.Floating != 100 {
		t.Errorf("floating: expected 100, got %v", alice.Floating)
	}
	if got := eng.BurntStableSupply(); got != 100 {
		t.Errorf("burnt supply: expected 100, got %v", got)
	}
}

func TestConvertForward_AppliesFluxInfluence(t *testing.T) {
	eng, l := newTestEngine(t)
	if err := eng.ConvertForward("Alice", 100, 128); err != nil {
		t.Fatal(err)
	}

	// Supplies are now pegged=12800, floating=100, burnt=100. At oracle rate
	// 256 the flux ratio is 128/256 = 0.5, below 1, so the influence is the
	// ratio itself.
	if err := eng.ConvertForward("Bob", 10, 256); err != nil {
		t.Fatal(err)
	}
	bob, _ := l.View("Bob")
	if !almostEqual(bob.Floating, 10*0.5) {
		t.Errorf("floating: expected 5, got %v", bob.Floating)
	}
	if !almostEqual(bob.Pegged, 10*256) {
		t.Errorf("pegged: expected 2560, got %v", bob.Pegged)
	}
}

func TestConvertForward_ClampsAbovePeg(t *testing.T) {
	eng, l := newTestEngine(t)
	if err := eng.ConvertForward("Alice", 100, 128); err != nil {
		t.Fatal(err)
	}

	// At oracle rate 64 the flux ratio is 128/64 = 2 and the reserve ratio is
	// 100/100 = 1, so the influence clamps to exactly 1.
	if err := eng.ConvertForward("Bob", 10, 64); err != nil {
		t.Fatal(err)
	}
	bob, _ := l.View("Bob")
	if bob.Floating != 10 {
		t.Errorf("floating: expected clamped mint of 10, got %v", bob.Floating)
	}
}

func TestConversion_RoundTrip(t *testing.T) {
	eng, l := newTestEngine(t)

	before, _ := l.View("Alice")
	burntBefore := eng.BurntStableSupply()

	if err := eng.ConvertForward("Alice", 100, 128); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if err := eng.ConvertBackward("Alice", 100); err != nil {
		t.Fatalf("backward: %v", err)
	}

	after, _ := l.View("Alice")
	if !almostEqual(after.Stable, before.Stable) {
		t.Errorf("stable not restored: %v vs %v", after.Stable, before.Stable)
	}
	if !almostEqual(after.Pegged, before.Pegged) {
		t.Errorf("pegged not restored: %v vs %v", after.Pegged, before.Pegged)
	}
	if !almostEqual(after.Floating, before.Floating) {
		t.Errorf("floating not restored: %v vs %v", after.Floating, before.Floating)
	}
	if !almostEqual(eng.BurntStableSupply(), burntBefore) {
		t.Errorf("burnt supply not restored: %v vs %v", eng.BurntStableSupply(), burntBefore)
	}
}

func TestConvertBackward_InsufficientBalance(t *testing.T) {
	eng, l := newTestEngine(t)
	if err := eng.ConvertForward("Alice", 100, 128); err != nil {
		t.Fatal(err)
	}

	before, _ := l.View("Alice")
	burntBefore := eng.BurntStableSupply()

	err := eng.ConvertBackward("Alice", 500)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// No partial mutation on failure.
	after, _ := l.View("Alice")
	if after != before {
		t.Errorf("account mutated on failed conversion: %+v vs %+v", after, before)
	}
	if eng.BurntStableSupply() != burntBefore {
		t.Errorf("burnt supply mutated on failed conversion")
	}
}

func TestConvertForward_NoEngineSideCheck(t *testing.T) {
	// The engine performs no sufficiency check: converting more than the
	// account holds drives the stable balance negative. The pre-check lives
	// at the call site, not here.
	eng, l := newTestEngine(t)
	if err := eng.ConvertForward("Bob", 600, 128); err != nil {
		t.Fatalf("convert forward: %v", err)
	}
	bob, _ := l.View("Bob")
	if bob.Stable != -100 {
		t.Errorf("expected stable balance -100, got %v", bob.Stable)
	}
}

func TestConvertForward_UnknownAccount(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.ConvertForward("Nobody", 10, 128); !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestSetOracleRate(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.SetOracleRate(150, "API")
	if got := eng.OracleRate(); got != 150 {
		t.Errorf("expected 150, got %v", got)
	}
}
