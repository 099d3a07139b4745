package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evgeny-myasishchev/xts-bank/config"
	"github.com/evgeny-myasishchev/xts-bank/pkg/app"
	"github.com/evgeny-myasishchev/xts-bank/pkg/bank"
	"github.com/evgeny-myasishchev/xts-bank/pkg/dal"
	"github.com/evgeny-myasishchev/xts-bank/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/xts-bank/pkg/server"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	port     int
	portFile string
}

func init() {
	flag.IntVar(&cliArgs.port, "port", -1, "Port to listen at (0 for an ephemeral port). Overrides config")
	flag.StringVar(&cliArgs.portFile, "port-file", "", "File to store the bound port to. Overrides config")

	flag.Parse()
}

func main() {
	appCfg := config.LoadAppConfig()

	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
	})

	port := appCfg.Server.Port.Value()
	if cliArgs.port >= 0 {
		port = cliArgs.port
	}
	portFile := appCfg.Server.PortFile.Value()
	if cliArgs.portFile != "" {
		portFile = cliArgs.portFile
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		logger.Info(ctx, "Got %v signal, shutting down", sig)
		cancel()
	}()

	injector := app.BootstrapServices(appCfg)

	if err := injector(func(ledger *bank.Ledger, journal dal.Journal) error {
		if err := journal.Setup(ctx); err != nil {
			return err
		}
		srv := server.New(
			server.WithLedger(ledger),
			server.WithJournal(journal),
			server.WithAddress(fmt.Sprintf(":%v", port)),
			server.WithPortFile(portFile),
		)
		return srv.ListenAndServe(ctx)
	}); err != nil {
		logger.WithError(err).Error(ctx, "Server failed")
		os.Exit(1)
	}
}
