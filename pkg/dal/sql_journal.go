package dal

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/evgeny-myasishchev/xts-bank/pkg/lib-core-golang/diag"

	// This has to be here to let go mods work
	_ "github.com/mattn/go-sqlite3"
)

var logger = diag.CreateLogger()

type sqlJournal struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func (j *sqlJournal) Setup(ctx context.Context) error {
	logger.Info(ctx, "Setup transfers journal")
	_, err := j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS transfers(
	id           nvarchar(255) NOT NULL PRIMARY KEY,
	from_account nvarchar(255) NOT NULL,
	to_account   nvarchar(255) NOT NULL,
	amount_xts   INTEGER NOT NULL,
	comment      nvarchar(255) NOT NULL,
	created_at   timestamp NOT NULL
);
`)
	return errors.Wrap(err, "Failed to setup transfers journal")
}

func (j *sqlJournal) RecordTransfer(ctx context.Context, transfer *TransferDTO) error {
	if _, err := j.db.ExecContext(ctx, `
	INSERT INTO transfers(id, from_account, to_account, amount_xts, comment, created_at)
	VALUES($1, $2, $3, $4, $5, $6)
	`, j.newID(), transfer.From, transfer.To, transfer.AmountXTS, transfer.Comment, j.now()); err != nil {
		return errors.Wrap(err, "Failed to record transfer")
	}
	return nil
}

// SQLJournalOpt is an option of a SQL journal
type SQLJournalOpt func(j *sqlJournal)

// WithSQLDb will set an explicit db instance for a journal
func WithSQLDb(db *sql.DB) SQLJournalOpt {
	return func(j *sqlJournal) {
		j.db = db
	}
}

// WithNowService will set a custom now source. Used for tests
func WithNowService(now func() time.Time) SQLJournalOpt {
	return func(j *sqlJournal) {
		j.now = now
	}
}

// NewSQLJournal returns an instance of a sql backed journal
func NewSQLJournal(opts ...SQLJournalOpt) (Journal, error) {
	journal := &sqlJournal{
		now: time.Now,
		newID: func() string {
			return uuid.NewV4().String()
		},
	}
	for _, opt := range opts {
		opt(journal)
	}
	if journal.db == nil {
		return nil, errors.New("Journal db is not initialized")
	}
	return journal, nil
}
