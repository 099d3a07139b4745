package dal

import "context"

// TransferDTO is a DTO of a completed transfer
type TransferDTO struct {
	From      string
	To        string
	AmountXTS int
	Comment   string
}

// Journal is a write-only audit sink of completed transfers.
// It is never read back at startup so the ledger state itself
// stays in-memory only.
type Journal interface {
	Setup(ctx context.Context) error
	RecordTransfer(ctx context.Context, transfer *TransferDTO) error
}

type nopJournal struct{}

func (j *nopJournal) Setup(ctx context.Context) error {
	return nil
}

func (j *nopJournal) RecordTransfer(ctx context.Context, transfer *TransferDTO) error {
	return nil
}

// NewNopJournal returns a journal that records nothing.
// Used when no storage driver is configured.
func NewNopJournal() Journal {
	return &nopJournal{}
}
