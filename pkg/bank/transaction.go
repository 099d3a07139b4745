package bank

// Transaction is a single immutable entry of an account transactions log.
// Once appended to a log it is never changed or removed.
type Transaction struct {
	// Counterparty is the other side of the transfer.
	// It is nil for the synthetic opening deposit.
	Counterparty *Account

	// BalanceDeltaXTS is a signed amount applied to the owning account.
	// Positive for credits, negative for debits.
	BalanceDeltaXTS int

	// Comment is a free-form transfer comment, may be empty
	Comment string
}
