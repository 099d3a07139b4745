package bank

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
)

func Test_TransactionsCursor_WaitNext_DeliversInOrder(t *testing.T) {
	const transfers = 20

	ledger := NewLedger()
	observed := ledger.GetOrCreateUser("observed-" + faker.Word())
	payer := ledger.GetOrCreateUser("payer-" + faker.Word())
	unrelatedA := ledger.GetOrCreateUser("unrelated-a-" + faker.Word())
	unrelatedB := ledger.GetOrCreateUser("unrelated-b-" + faker.Word())

	cursor := observed.Monitor()

	for i := 0; i < transfers; i++ {
		if !assert.NoError(t, payer.Transfer(observed, 1, fmt.Sprintf("trx-%v", i))) {
			return
		}
		// Unrelated transfers must not show up on the cursor
		if !assert.NoError(t, unrelatedA.Transfer(unrelatedB, 1, "noise")) {
			return
		}
	}

	ctx := context.Background()
	for i := 0; i < transfers; i++ {
		trx, err := cursor.WaitNext(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, fmt.Sprintf("trx-%v", i), trx.Comment)
		assert.Equal(t, 1, trx.BalanceDeltaXTS)
		assert.Same(t, payer, trx.Counterparty)
	}
}

func Test_TransactionsCursor_WaitNext_BlocksUntilAppend(t *testing.T) {
	observed := NewAccount("observed-" + faker.Word())
	payer := NewAccount("payer-" + faker.Word())

	cursor := observed.Monitor()

	comment := faker.Sentence()
	delivered := make(chan Transaction, 1)
	go func() {
		trx, err := cursor.WaitNext(context.Background())
		if err != nil {
			t.Error(err)
			return
		}
		delivered <- trx
	}()

	// Give the consumer a chance to block first
	time.Sleep(10 * time.Millisecond)
	if !assert.NoError(t, payer.Transfer(observed, 5, comment)) {
		return
	}

	select {
	case trx := <-delivered:
		assert.Equal(t, comment, trx.Comment)
		assert.Equal(t, 5, trx.BalanceDeltaXTS)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "WaitNext should have been woken up by the transfer")
	}
}

// A consumer draining the cursor concurrently with a producer must see
// every transaction exactly once, in log order
func Test_TransactionsCursor_WaitNext_ConcurrentProducer(t *testing.T) {
	const transfers = 500

	observed := NewAccount("observed-" + faker.Word())
	payer := NewAccount("payer-" + faker.Word())

	cursor := observed.Monitor()

	go func() {
		for i := 0; i < transfers; i++ {
			if err := payer.Transfer(observed, 0, fmt.Sprintf("trx-%v", i)); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for i := 0; i < transfers; i++ {
		trx, err := cursor.WaitNext(ctx)
		if !assert.NoError(t, err) {
			return
		}
		if !assert.Equal(t, fmt.Sprintf("trx-%v", i), trx.Comment) {
			return
		}
	}
}

func Test_TransactionsCursor_WaitNext_ContextCancelled(t *testing.T) {
	observed := NewAccount("observed-" + faker.Word())
	cursor := observed.Monitor()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cursor.WaitNext(cancelled)
	assert.Equal(t, context.Canceled, err)

	ctx, cancel := context.WithCancel(context.Background())
	unblocked := make(chan error, 1)
	go func() {
		_, err := cursor.WaitNext(ctx)
		unblocked <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-unblocked:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "WaitNext should have been unblocked by ctx cancel")
	}

	// The cursor position must not have advanced, the next transaction
	// is still delivered
	payer := NewAccount("payer-" + faker.Word())
	if !assert.NoError(t, payer.Transfer(observed, 1, "after cancel")) {
		return
	}
	trx, err := cursor.WaitNext(context.Background())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "after cancel", trx.Comment)
}

func Test_Account_SnapshotTransactions_CursorHasNoGap(t *testing.T) {
	observed := NewAccount("observed-" + faker.Word())
	payer := NewAccount("payer-" + faker.Word())

	if !assert.NoError(t, payer.Transfer(observed, 1, "before snapshot")) {
		return
	}

	var seenLen int
	cursor := observed.SnapshotTransactions(func(transactions []Transaction, balanceXTS int) {
		seenLen = len(transactions)
	})
	assert.Equal(t, 2, seenLen, "Snapshot should see the opening deposit and the transfer")

	if !assert.NoError(t, payer.Transfer(observed, 2, "after snapshot")) {
		return
	}

	trx, err := cursor.WaitNext(context.Background())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "after snapshot", trx.Comment, "Cursor should continue right past the snapshot")
}
