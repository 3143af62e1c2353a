// Package server hosts the listening socket and per-connection goroutine
// dispatch around the exchange package's synchronous core, the way the
// teacher's server package wraps http11.Connection.Serve with Accept
// loop, connection tracking, and graceful shutdown. TLS termination is
// out of scope here (callers wanting TLS wrap the net.Listener
// themselves with tls.NewListener before calling Listen).
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Beau-Coup/exchange"
)

// Handler answers one Exchange: it must call ex.Wait's companion
// Send/Write/Finish sequence itself is already done by the time Handler
// runs (Serve calls Wait), so Handler only needs to Send/Write/Finish.
type Handler func(ex *exchange.Exchange)

// Config holds server-wide tuning, mirroring the teacher's Config but
// dropping the TLS and allocation-mode knobs that don't apply here.
type Config struct {
	// ReadTimeout is the value IdleTimeout takes when IdleTimeout is
	// zero; it is not applied to connections on its own. Zero selects
	// 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds how long the handler may take writing a
	// response. Zero selects 60 seconds.
	WriteTimeout time.Duration

	// IdleTimeout bounds each Wait for a request head, including the
	// wait between keep-alive requests. Zero means ReadTimeout is used.
	IdleTimeout time.Duration

	// MaxHeaderBytes is the client header buffer size passed to
	// exchange.NewExchangePool; requests whose head exceeds it fail
	// HeadersOversize.
	MaxHeaderBytes int

	// MaxConcurrentConnections caps concurrently accepted connections.
	// Zero means unlimited.
	MaxConcurrentConnections int

	// Logger receives connection-lifecycle and error events. Defaults
	// to slog.Default() if nil.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = c.ReadTimeout
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = exchange.DefaultClientHeaderBuffer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats are the running connection counters Server exposes.
type Stats struct {
	TotalConnections  atomic.Uint64
	ActiveConnections atomic.Int64
}

// Server accepts connections on a net.Listener and drives one Exchange
// per connection, reusing it across pipelined keep-alive requests until
// Exchange.Reset reports OutcomeClosing.
type Server struct {
	cfg      Config
	listener net.Listener
	pool     *exchange.ExchangePool
	stats    Stats

	shutdown atomic.Bool
	wg       sync.WaitGroup
	connSem  chan struct{}
}

// Listen opens a net.Listener on network/address (as net.Listen would)
// and returns a Server ready for Serve.
func Listen(network, address string, cfg Config) (*Server, error) {
	cfg.applyDefaults()
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		listener: ln,
		pool:     exchange.NewExchangePool(cfg.MaxHeaderBytes, exchange.MinClientHeaderBuffer),
	}
	if cfg.MaxConcurrentConnections > 0 {
		s.connSem = make(chan struct{}, cfg.MaxConcurrentConnections)
	}
	return s, nil
}

// Serve accepts connections until the listener is closed, dispatching
// each to its own goroutine running handler over a pooled Exchange.
// It blocks until Accept fails; after Close, that failure is not
// reported as an error.
func (s *Server) Serve(handler Handler) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}
		if s.connSem != nil {
			s.connSem <- struct{}{}
		}
		s.stats.TotalConnections.Add(1)
		s.stats.ActiveConnections.Add(1)
		s.wg.Add(1)
		go s.serveConn(conn, handler)
	}
}

// Close stops accepting new connections and waits for every in-flight
// connection's serve loop to end (on a closing Reset or a failed Wait,
// such as the idle timeout) before returning; it does not close active
// connections itself.
func (s *Server) Close() error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

// Stats returns the server's running counters.
func (s *Server) Stats() *Stats { return &s.stats }

func (s *Server) serveConn(conn net.Conn, handler Handler) {
	defer s.wg.Done()
	defer func() {
		s.stats.ActiveConnections.Add(-1)
		if s.connSem != nil {
			<-s.connSem
		}
	}()
	defer conn.Close()

	ex := s.pool.Get(conn)
	defer ex.Deinit()

	logger := s.cfg.Logger.With("remote_addr", conn.RemoteAddr().String())

	for {
		waitCtx, cancel := context.WithTimeout(context.Background(), s.cfg.IdleTimeout)
		req, err := ex.Wait(waitCtx)
		cancel()
		if err != nil {
			s.respondToWaitFailure(ex, err, logger)
			return
		}

		logger.Debug("request", "method", req.Method(), "target", req.Target())
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		handler(ex)

		outcome, _ := ex.Reset()
		if outcome == exchange.OutcomeClosing {
			return
		}
	}
}

// respondToWaitFailure applies the wait-failure response obligation:
// I/O errors get no response (the connection is already unusable),
// every other parse failure obligates the status StatusObligation
// names.
func (s *Server) respondToWaitFailure(ex *exchange.Exchange, err error, logger *slog.Logger) {
	exErr, ok := err.(*exchange.Error)
	if !ok {
		logger.Error("wait failed", "error", err)
		return
	}
	status, shouldRespond := exErr.Kind.StatusObligation()
	if !shouldRespond {
		logger.Debug("connection ended", "kind", exErr.Kind.String())
		return
	}
	logger.Warn("request rejected", "kind", exErr.Kind.String(), "status", status)
	if sendErr := ex.Send(status, ""); sendErr != nil {
		return
	}
	_ = ex.Finish()
}
