package bank

import (
	"sync"
	"sync/atomic"
)

// InitialBalanceXTS is a balance every account starts with
const InitialBalanceXTS = 100

// accountSeq defines a process-global total order over accounts.
// Transfer acquires both account mutexes in this order which rules
// out lock acquisition cycles between opposite transfers.
var accountSeq uint64

// Account is a named holder of a balance and its transactions log.
// The balance always equals the sum of log deltas and is never negative.
type Account struct {
	name string
	seq  uint64

	mu             sync.Mutex
	newTransaction *sync.Cond

	balanceXTS   int
	transactions []Transaction
}

// NewAccount creates an account with the initial balance and
// a synthetic opening deposit transaction
func NewAccount(name string) *Account {
	acc := &Account{
		name: name,
		seq:  atomic.AddUint64(&accountSeq, 1),
	}
	acc.newTransaction = sync.NewCond(&acc.mu)

	acc.mu.Lock()
	defer acc.mu.Unlock()
	acc.addTransaction(nil, InitialBalanceXTS, "Initial deposit for "+name)
	return acc
}

// Name returns the immutable account name
func (acc *Account) Name() string {
	return acc.name
}

// BalanceXTS returns the current balance
func (acc *Account) BalanceXTS() int {
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balanceXTS
}

// addTransaction applies the delta, appends a log entry and wakes up
// cursors blocked on this account. Callers must hold acc.mu.
func (acc *Account) addTransaction(counterparty *Account, deltaXTS int, comment string) {
	acc.balanceXTS += deltaXTS
	acc.transactions = append(acc.transactions, Transaction{
		Counterparty:    counterparty,
		BalanceDeltaXTS: deltaXTS,
		Comment:         comment,
	})
	acc.newTransaction.Broadcast()
}

// Transfer atomically moves amountXTS from this account to the counterparty.
// Both the debit and the credit are applied within a joint critical section
// so no observer can see one without the other.
func (acc *Account) Transfer(counterparty *Account, amountXTS int, comment string) error {
	if acc == counterparty {
		return newInvalidTransferError("Self-transfer")
	}
	if amountXTS < 0 {
		return newInvalidTransferError("Negative amount, you're lose:(")
	}

	first, second := acc, counterparty
	if second.seq < first.seq {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if acc.balanceXTS-amountXTS < 0 {
		return newNotEnoughFundsError(acc.balanceXTS, amountXTS)
	}

	acc.addTransaction(counterparty, -amountXTS, comment)
	counterparty.addTransaction(acc, amountXTS, comment)
	return nil
}

// SnapshotTransactions exposes a mutually consistent view of the log and
// the balance to the visitor and returns a cursor positioned right past
// the visited log. The visitor must not mutate the log slice and must not
// call back into the account.
func (acc *Account) SnapshotTransactions(visitor func(transactions []Transaction, balanceXTS int)) *TransactionsCursor {
	acc.mu.Lock()
	defer acc.mu.Unlock()
	visitor(acc.transactions, acc.balanceXTS)
	return &TransactionsCursor{account: acc, index: len(acc.transactions)}
}

// Monitor returns a cursor positioned at the current end of the log
func (acc *Account) Monitor() *TransactionsCursor {
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return &TransactionsCursor{account: acc, index: len(acc.transactions)}
}
