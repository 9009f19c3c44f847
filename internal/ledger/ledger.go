package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"FluxLedger/internal/model"
)

var (
	// ErrAccountNotFound is returned when an operation names an unknown account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when provisioning a duplicate account name.
	ErrAccountExists = errors.New("account already exists")
)

// Ledger maps account names to balances. All access goes through its mutex;
// callers that need a multi-field atomic group use Update.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[string]*model.Account)}
}

// CreateAccount provisions a new account with an initial stable balance.
func (l *Ledger) CreateAccount(name string, stable float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[name]; ok {
		return fmt.Errorf("create account %q: %w", name, ErrAccountExists)
	}
	l.accounts[name] = &model.Account{Name: name, Stable: stable}
	return nil
}

// View returns a copy of the named account.
func (l *Ledger) View(name string) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[name]
	if !ok {
		return model.Account{}, fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	return *acct, nil
}

// Update applies fn to the named account under the ledger lock. The closure is
// the atomicity boundary: every field it touches commits together.
func (l *Ledger) Update(name string, fn func(*model.Account)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[name]
	if !ok {
		return fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	fn(acct)
	return nil
}

// Transfer moves amount of asset between two accounts. The move is
// unconditional: sufficiency is the caller's contract, and violating it drives
// the sender's balance negative rather than failing.
func (l *Ledger) Transfer(from, to string, asset model.Asset, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("account %q: %w", from, ErrAccountNotFound)
	}
	dst, ok := l.accounts[to]
	if !ok {
		return fmt.Errorf("account %q: %w", to, ErrAccountNotFound)
	}

	src.Add(asset, -amount)
	dst.Add(asset, amount)
	return nil
}

// TotalSupplies sums every account's free balances. Full scan, O(n) over
// accounts; the ledger is small and in-memory.
func (l *Ledger) TotalSupplies() (stable, pegged, floating float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, acct := range l.accounts {
		stable += acct.Stable
		pegged += acct.Pegged
		floating += acct.Floating
	}
	return stable, pegged, floating
}

// Accounts returns copies of all accounts, sorted by name.
func (l *Ledger) Accounts() []model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Account, 0, len(l.accounts))
	for _, acct := range l.accounts {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every account name, sorted. Used by the yield accrual sweep.
func (l *Ledger) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.accounts))
	for name := range l.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
