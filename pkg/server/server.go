package server

import (
	"context"
	"io/ioutil"
	"net"
	"strconv"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/xts-bank/pkg/bank"
	"github.com/evgeny-myasishchev/xts-bank/pkg/dal"
	"github.com/evgeny-myasishchev/xts-bank/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// Server accepts client connections and serves the bank text protocol,
// one goroutine per connection
type Server struct {
	ledger   *bank.Ledger
	journal  dal.Journal
	address  string
	portFile string
}

// Opt is an option of a server
type Opt func(s *Server)

// WithLedger will set a ledger served by this server
func WithLedger(ledger *bank.Ledger) Opt {
	return func(s *Server) {
		s.ledger = ledger
	}
}

// WithJournal will set a journal to record completed transfers to
func WithJournal(journal dal.Journal) Opt {
	return func(s *Server) {
		s.journal = journal
	}
}

// WithAddress will set an address to listen at (e.g ":0" for an ephemeral port)
func WithAddress(address string) Opt {
	return func(s *Server) {
		s.address = address
	}
}

// WithPortFile will set a file to store the bound port to
func WithPortFile(portFile string) Opt {
	return func(s *Server) {
		s.portFile = portFile
	}
}

// New returns an instance of a server
func New(opts ...Opt) *Server {
	s := &Server{
		journal: dal.NewNopJournal(),
		address: ":0",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe binds a tcp listener at the configured address and serves
// until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "Failed to listen at %v", s.address)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from the given listener until ctx is cancelled.
// The listener is closed when Serve returns.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer listener.Close()

	s.storePort(ctx, listener)
	logger.Info(ctx, "Listening at %v", listener.Addr())

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Server stopped")
				return nil
			}
			return errors.Wrap(err, "Failed to accept connection")
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	ctx = diag.ContextWithNewSessionID(ctx)

	logger.Info(ctx, "Connected %v --> %v", conn.RemoteAddr(), conn.LocalAddr())
	sess := newSession(conn, s.ledger, s.journal)
	if err := sess.run(ctx); err != nil {
		logger.WithError(err).Debug(ctx, "Session ended with error")
	}
	logger.Info(ctx, "Disconnected %v --> %v", conn.RemoteAddr(), conn.LocalAddr())
}

func (s *Server) storePort(ctx context.Context, listener net.Listener) {
	if s.portFile == "" {
		return
	}
	port := listener.Addr().(*net.TCPAddr).Port
	if err := ioutil.WriteFile(s.portFile, []byte(strconv.Itoa(port)), 0644); err != nil {
		logger.WithError(err).Error(ctx, "Unable to store port to file %v", s.portFile)
	}
}
