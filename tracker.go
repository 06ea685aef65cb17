package gecho

import (
	"context"
	"sync"
	"time"
)

type (
	// ConnTracker keeps track of the connections owned by live workers so
	// that a Server can close them when it stops.
	ConnTracker interface {
		AddConn(Conn)
		DelConn(Conn)
		// Close force closes every tracked connection.
		Close() error
		// Shutdown closes idle connections and waits for busy ones to
		// become idle or finish, until ctx is done.
		Shutdown(context.Context) error
	}

	// MapConnTracker remembers every live connection. Once closed, it
	// closes connections handed to AddConn right away so that a worker
	// racing with Close cannot keep a socket open.
	MapConnTracker struct {
		mu         sync.Mutex
		activeConn map[Conn]struct{}
		closed     bool
	}
)

var (
	shutdownPollInterval = 50 * time.Millisecond
)

func NewMapConnTracker() ConnTracker {
	return &MapConnTracker{
		activeConn: make(map[Conn]struct{}),
	}
}

func (ct *MapConnTracker) AddConn(conn Conn) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if ct.closed {
		conn.Close()
		return
	}
	ct.activeConn[conn] = struct{}{}
}

func (ct *MapConnTracker) DelConn(conn Conn) {
	ct.mu.Lock()
	delete(ct.activeConn, conn)
	ct.mu.Unlock()
}

func (ct *MapConnTracker) Close() error {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.closed = true
	for c := range ct.activeConn {
		c.Close()
		delete(ct.activeConn, c)
	}
	return nil
}

func (ct *MapConnTracker) Shutdown(ctx context.Context) error {
	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	for {
		if ct.closeIdleConns() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// closeIdleConns closes all idle connections and reports whether the
// server is quiescent.
func (ct *MapConnTracker) closeIdleConns() bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	quiescent := true
	for c := range ct.activeConn {
		if !c.IsIdle() {
			quiescent = false
			continue
		}
		c.Close()
		delete(ct.activeConn, c)
	}
	return quiescent
}
