package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/evgeny-myasishchev/xts-bank/pkg/bank"
	"github.com/evgeny-myasishchev/xts-bank/pkg/dal"
)

const (
	cmdBalance      = "balance"
	cmdTransactions = "transactions"
	cmdMonitor      = "monitor"
	cmdTransfer     = "transfer"
)

// session is a per-connection handler of the line oriented text protocol.
// It parses commands, dispatches them to the ledger and formats replies.
type session struct {
	in      *bufio.Scanner
	out     io.Writer
	ledger  *bank.Ledger
	journal dal.Journal
	user    *bank.Account
}

func newSession(rw io.ReadWriter, ledger *bank.Ledger, journal dal.Journal) *session {
	return &session{
		in:      bufio.NewScanner(rw),
		out:     rw,
		ledger:  ledger,
		journal: journal,
	}
}

func (s *session) run(ctx context.Context) error {
	if err := s.authentication(ctx); err != nil {
		return err
	}
	for {
		command, ok := s.readLine()
		if !ok {
			return nil
		}
		if err := s.dispatch(ctx, command); err != nil {
			return err
		}
	}
}

func (s *session) authentication(ctx context.Context) error {
	if err := s.writeLine("What is your name?"); err != nil {
		return err
	}
	name, ok := s.readLine()
	if !ok {
		return nil
	}
	s.user = s.ledger.GetOrCreateUser(name)
	return s.writeLine("Hi " + name)
}

func (s *session) dispatch(ctx context.Context, command string) error {
	cmd, rest := nextToken(command)
	switch cmd {
	case cmdBalance:
		return s.writeLine(strconv.Itoa(s.user.BalanceXTS()))
	case cmdTransactions:
		n, err := parseCount(rest)
		if err != nil {
			return s.writeLine(err.Error())
		}
		_, err = s.writeTransactions(n)
		return err
	case cmdMonitor:
		n, err := parseCount(rest)
		if err != nil {
			return s.writeLine(err.Error())
		}
		return s.monitor(ctx, n)
	case cmdTransfer:
		return s.transfer(ctx, rest)
	default:
		return s.writeLine(fmt.Sprintf("Unknown command: '%v'", cmd))
	}
}

// writeTransactions prints up to the last n log entries and the balance,
// both taken from a single consistent snapshot
func (s *session) writeTransactions(n int) (*bank.TransactionsCursor, error) {
	var writeErr error
	cursor := s.user.SnapshotTransactions(func(transactions []bank.Transaction, balanceXTS int) {
		if writeErr = s.writeLine("CPTY\tBAL\tCOMM"); writeErr != nil {
			return
		}
		start := len(transactions) - n
		if start < 0 {
			start = 0
		}
		for _, trx := range transactions[start:] {
			if writeErr = s.writeLine(formatTransaction(trx)); writeErr != nil {
				return
			}
		}
		writeErr = s.writeLine(fmt.Sprintf("===== BALANCE: %v XTS =====", balanceXTS))
	})
	return cursor, writeErr
}

// monitor prints the last n entries and then keeps pushing every new
// transaction as it arrives. The cursor comes from the same snapshot so
// nothing appended after the snapshot escapes the stream.
func (s *session) monitor(ctx context.Context, n int) error {
	cursor, err := s.writeTransactions(n)
	if err != nil {
		return err
	}
	for {
		trx, err := cursor.WaitNext(ctx)
		if err != nil {
			return err
		}
		if err := s.writeLine(formatTransaction(trx)); err != nil {
			return err
		}
	}
}

func (s *session) transfer(ctx context.Context, args string) error {
	counterpartyName, rest := nextToken(args)
	amountToken, comment := nextToken(rest)
	amountXTS, err := strconv.Atoi(amountToken)
	if err != nil {
		return s.writeLine(fmt.Sprintf("Invalid amount: '%v'", amountToken))
	}

	counterparty := s.ledger.GetOrCreateUser(counterpartyName)
	if err := s.user.Transfer(counterparty, amountXTS, comment); err != nil {
		return s.writeLine(err.Error())
	}
	if err := s.writeLine("OK"); err != nil {
		return err
	}

	if err := s.journal.RecordTransfer(ctx, &dal.TransferDTO{
		From:      s.user.Name(),
		To:        counterparty.Name(),
		AmountXTS: amountXTS,
		Comment:   comment,
	}); err != nil {
		logger.WithError(err).Error(ctx, "Failed to record transfer")
	}
	return nil
}

func (s *session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *session) writeLine(line string) error {
	_, err := io.WriteString(s.out, line+"\n")
	return err
}

func formatTransaction(trx bank.Transaction) string {
	counterparty := "-"
	if trx.Counterparty != nil {
		counterparty = trx.Counterparty.Name()
	}
	return fmt.Sprintf("%v\t%v\t%v", counterparty, trx.BalanceDeltaXTS, trx.Comment)
}

// nextToken cuts the first space separated token off the line.
// The remainder has exactly one separator stripped so transfer comments
// keep their inner spacing.
func nextToken(line string) (token string, rest string) {
	line = strings.TrimLeft(line, " ")
	if i := strings.Index(line, " "); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

func parseCount(args string) (int, error) {
	token, _ := nextToken(args)
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("Invalid count: '%v'", token)
	}
	return n, nil
}
