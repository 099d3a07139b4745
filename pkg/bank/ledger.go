package bank

import "sync"

// Ledger owns all accounts keyed by name. Accounts are created lazily
// on first lookup and live as long as the ledger does.
type Ledger struct {
	mu    sync.Mutex
	users map[string]*Account
}

// NewLedger returns an empty ledger
func NewLedger() *Ledger {
	return &Ledger{users: map[string]*Account{}}
}

// GetOrCreateUser returns the account registered under name, creating
// it on first reference. Concurrent calls with the same new name get
// the same single instance. The ledger mutex guards the map only and
// is never held together with an account mutex.
func (l *Ledger) GetOrCreateUser(name string) *Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.users[name]; ok {
		return acc
	}
	acc := NewAccount(name)
	l.users[name] = acc
	return acc
}
