package bank

import "context"

// TransactionsCursor tracks how much of an account log a particular
// observer has consumed. Independent cursors progress independently.
// A cursor is not safe for concurrent use by multiple goroutines.
type TransactionsCursor struct {
	account *Account
	index   int
}

// WaitNext blocks until the account log grows past the cursor position,
// then returns the transaction at that position and advances by one.
// Transactions appended between the cursor creation and the first wait
// are never missed.
//
// Cancelling ctx unblocks the wait with ctx.Err() and the cursor
// position is left as is.
func (c *TransactionsCursor) WaitNext(ctx context.Context) (Transaction, error) {
	acc := c.account
	acc.mu.Lock()
	defer acc.mu.Unlock()

	if c.index < len(acc.transactions) {
		trx := acc.transactions[c.index]
		c.index++
		return trx, nil
	}

	// The watcher turns ctx cancellation into a broadcast so the
	// cond wait below can observe it
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			acc.mu.Lock()
			acc.newTransaction.Broadcast()
			acc.mu.Unlock()
		case <-stopWatch:
		}
	}()

	for c.index >= len(acc.transactions) {
		if err := ctx.Err(); err != nil {
			return Transaction{}, err
		}
		acc.newTransaction.Wait()
	}
	trx := acc.transactions[c.index]
	c.index++
	return trx, nil
}
