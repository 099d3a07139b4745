package app

import (
	"database/sql"

	"go.uber.org/dig"

	"github.com/evgeny-myasishchev/xts-bank/config"
	"github.com/evgeny-myasishchev/xts-bank/pkg/bank"
	"github.com/evgeny-myasishchev/xts-bank/pkg/dal"
)

// Injector is a function that will inject desired services
// to a target function
type Injector func(function interface{}) error

// BootstrapServices setup di container with all app services
func BootstrapServices(appCfg *config.AppConfig) Injector {
	c := dig.New()

	c.Provide(func() (*sql.DB, error) {
		driver := appCfg.Storage.Driver.Value()
		if driver == "" {
			// Journal is disabled, nothing to open
			return nil, nil
		}
		return sql.Open(driver, appCfg.Storage.DSN.Value())
	})

	c.Provide(func(db *sql.DB) (dal.Journal, error) {
		if db == nil {
			return dal.NewNopJournal(), nil
		}
		return dal.NewSQLJournal(dal.WithSQLDb(db))
	})

	c.Provide(bank.NewLedger)

	return func(function interface{}) error {
		return c.Invoke(function)
	}
}
