package gecho

import (
	"context"
	"errors"
	"net"
	"runtime"
	"sync"
	"time"
)

const (
	// DefaultAddr listens on port 8080 on every local interface.
	DefaultAddr = ":8080"
	// DefaultBacklog is the number of pending connections the kernel
	// queues before Accept picks them up.
	DefaultBacklog = 10
	// DefaultKeepAlivePeriod is used when Server.KeepAlivePeriod is zero.
	DefaultKeepAlivePeriod = 3 * time.Minute
)

type (
	// Server accepts TCP connections and serves each of them on its own
	// goroutine. The zero value is an uppercase echo server on DefaultAddr.
	Server struct {
		Addr    string
		Backlog int
		// KeepAlivePeriod applies TCP keep-alive to accepted connections
		// when the listener was opened by ListenAndServe. Negative
		// disables it.
		KeepAlivePeriod time.Duration

		ConnHandler ConnHandler

		// Configurable components
		NewConn     NewConn
		ConnTracker ConnTracker
		Logger      Logger
		Retry       Retry
		Statistics  Statistics

		counter Counter

		mu       sync.Mutex
		listener net.Listener
		doneChan chan struct{}
	}
)

var (
	ErrServerClosed = errors.New("gecho: Server closed")
	ErrAbortHandler = errors.New("gecho: abort Handler")
)

func (s *Server) getDoneChan() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDoneChanLocked()
}

func (s *Server) getDoneChanLocked() chan struct{} {
	if s.doneChan == nil {
		s.doneChan = make(chan struct{})
	}
	return s.doneChan
}

func (s *Server) closeDoneChanLocked() {
	ch := s.getDoneChanLocked()
	select {
	case <-ch:
		// Already closed. Don't close again.
	default:
		// Safe to close here. We're the only closer, guarded
		// by s.mu.
		close(ch)
	}
}

func (s *Server) logger() Logger {
	if s.Logger == nil {
		return DefaultLogger
	}
	return s.Logger
}

// ListenerAddr returns the address Serve is accepting on, or nil before
// Serve has been called.
func (s *Server) ListenerAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting and force closes every active connection.
func (s *Server) Close() (err error) {
	s.mu.Lock()
	s.closeDoneChanLocked()
	ln, ct := s.listener, s.ConnTracker
	s.mu.Unlock()
	if ln != nil {
		err = ln.Close()
	}
	if ct != nil {
		ct.Close()
	}
	return
}

// Shutdown stops accepting, closes connections whose worker is waiting for
// input and waits for the others until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closeDoneChanLocked()
	ln, ct := s.listener, s.ConnTracker
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
	if ct == nil {
		return nil
	}
	return ct.Shutdown(ctx)
}

// ListenAndServe listens on s.Addr with s.Backlog and then calls Serve.
// Listen errors are returned before anything is logged.
func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := Listen(addr, s.Backlog)
	if err != nil {
		return err
	}
	s.logger().Infof("gecho: listening on %s", ln.Addr())
	if tl, ok := ln.(*net.TCPListener); ok && s.KeepAlivePeriod >= 0 {
		period := s.KeepAlivePeriod
		if period == 0 {
			period = DefaultKeepAlivePeriod
		}
		return s.Serve(tcpKeepAliveListener{TCPListener: tl, period: period})
	}
	return s.Serve(ln)
}

type tcpKeepAliveListener struct {
	*net.TCPListener
	period time.Duration
}

func (ln tcpKeepAliveListener) Accept() (c net.Conn, err error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(ln.period)
	return tc, nil
}

// ListenAndServe runs a Server on addr with handler. A nil handler serves
// the uppercase echo.
func ListenAndServe(addr string, handler ConnHandler) error {
	server := &Server{Addr: addr, ConnHandler: handler}
	return server.ListenAndServe()
}

// Serve accepts connections on l until the Server is closed, handing each
// one to a new goroutine. Accept errors are logged and retried with
// backoff. Serve returns ErrServerClosed after Close or Shutdown, or the
// accept error if l was closed by someone else.
func (s *Server) Serve(l net.Listener) error {
	var retry uint64
	defer l.Close()

	s.mu.Lock()
	// set reasonable default to each component
	if s.ConnHandler == nil {
		s.SetEchoHandler(DefaultBufferSize, UpperASCII)
	}
	if s.ConnTracker == nil {
		s.ConnTracker = NewMapConnTracker()
	}
	if s.Logger == nil {
		s.Logger = DefaultLogger
	}
	if s.Retry == nil {
		s.Retry = DefaultRetry
	}
	if s.Statistics == nil {
		s.Statistics = &TrafficStatistics{}
	}
	s.listener = l
	done := s.getDoneChanLocked()
	s.mu.Unlock()

	select {
	case <-done:
		return ErrServerClosed
	default:
	}

	base := context.Background()
	for {
		rw, e := l.Accept()
		if e != nil {
			select {
			case <-done:
				return ErrServerClosed
			default:
			}
			if errors.Is(e, net.ErrClosed) {
				return e
			}
			delay := s.Retry.Backoff(retry)
			s.Logger.Errorf("gecho: accept error: %v; retrying in %v", e, delay)
			select {
			case <-done:
				return ErrServerClosed
			case <-time.After(delay):
			}
			retry++
			continue
		}
		retry = 0
		select {
		case <-done:
			// accepted while closing; nobody will serve it
			rw.Close()
			return ErrServerClosed
		default:
		}
		var conn Conn = NewBaseConn(rw)
		if s.NewConn != nil {
			conn = s.NewConn(conn)
		}
		s.serve(base, conn)
	}
}

// serve starts the worker owning conn and returns without waiting for it.
func (s *Server) serve(ctx context.Context, conn Conn) {
	s.ConnTracker.AddConn(conn)
	go func() {
		s.counter.Enter(func(active int) {
			s.Logger.Infof("Client connected. Active clients: %d", active)
		})
		defer func() {
			if err := recover(); err != nil && err != ErrAbortHandler {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]
				s.Logger.Errorf("gecho: panic serving %v: %v\n%s", conn.RemoteAddr(), err, buf)
			}
			s.ConnTracker.DelConn(conn)
			s.Statistics.AddConnStats(conn)
			s.counter.Exit(func(active int) {
				s.Logger.Infof("Client disconnected. Active clients: %d", active)
			})
			conn.Close()
		}()
		// context per connection
		ctx, cancel := context.WithCancel(ctx)
		conn.SetCancelFunc(cancel)
		defer cancel()
		s.ConnHandler(ctx, conn)
	}()
}
