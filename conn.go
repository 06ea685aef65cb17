package gecho

import (
	"context"
	"net"
	"sync/atomic"
)

type (
	// Conn is a net.Conn owned by exactly one connection worker.
	Conn interface {
		net.Conn
		SetCancelFunc(context.CancelFunc)
		Stats() (int64, int64)
		SetIdle(bool)
		IsIdle() bool
	}

	// NewConn wraps a Conn right after it has been accepted.
	NewConn func(Conn) Conn

	baseConn struct {
		net.Conn
		CancelFunc context.CancelFunc
		idle       atomic.Bool
	}

	// StatsConn counts the bytes read from and written to the wrapped Conn.
	StatsConn struct {
		Conn
		InBytes  int64
		OutBytes int64
	}

	// DebugConn logs every Read, Write and Close on the wrapped Conn.
	DebugConn struct {
		Conn
		Logger Logger
	}
)

// NewBaseConn wraps an accepted net.Conn. Any I/O error on it cancels the
// context handed to the ConnHandler.
func NewBaseConn(conn net.Conn) Conn {
	return &baseConn{
		Conn: conn,
	}
}

func (bc *baseConn) Read(buf []byte) (n int, err error) {
	n, err = bc.Conn.Read(buf)
	if err != nil && bc.CancelFunc != nil {
		bc.CancelFunc()
	}
	return
}

func (bc *baseConn) Write(buf []byte) (n int, err error) {
	n, err = bc.Conn.Write(buf)
	if err != nil && bc.CancelFunc != nil {
		bc.CancelFunc()
	}
	return
}

func (bc *baseConn) SetCancelFunc(cancel context.CancelFunc) {
	bc.CancelFunc = cancel
}

func (bc *baseConn) Stats() (int64, int64) {
	return 0, 0
}

// SetIdle marks whether the worker is blocked waiting for the peer.
func (bc *baseConn) SetIdle(idle bool) {
	bc.idle.Store(idle)
}

func (bc *baseConn) IsIdle() bool {
	return bc.idle.Load()
}

// ChainConn layers wrappers from the innermost to the outermost.
func ChainConn(wrappers ...NewConn) NewConn {
	return func(conn Conn) Conn {
		for _, w := range wrappers {
			if w != nil {
				conn = w(conn)
			}
		}
		return conn
	}
}

func NewStatsConn(conn Conn) Conn {
	return &StatsConn{Conn: conn}
}

func (s *StatsConn) Read(buf []byte) (n int, err error) {
	n, err = s.Conn.Read(buf)
	s.InBytes += int64(n)
	return
}

func (s *StatsConn) Write(buf []byte) (n int, err error) {
	n, err = s.Conn.Write(buf)
	s.OutBytes += int64(n)
	return
}

func (s *StatsConn) Stats() (int64, int64) {
	return s.InBytes, s.OutBytes
}

// NewDebugConn returns a NewConn wrapping conns in a DebugConn that logs
// through l. A nil l means DefaultLogger.
func NewDebugConn(l Logger) NewConn {
	if l == nil {
		l = DefaultLogger
	}
	return func(conn Conn) Conn {
		return &DebugConn{Conn: conn, Logger: l}
	}
}

func (d *DebugConn) Read(buf []byte) (n int, err error) {
	n, err = d.Conn.Read(buf)
	d.Logger.Infof("gecho: %v Read(%d) = %d, %v", d.RemoteAddr(), len(buf), n, err)
	return
}

func (d *DebugConn) Write(buf []byte) (n int, err error) {
	n, err = d.Conn.Write(buf)
	d.Logger.Infof("gecho: %v Write(%d) = %d, %v", d.RemoteAddr(), len(buf), n, err)
	return
}

func (d *DebugConn) Close() (err error) {
	err = d.Conn.Close()
	d.Logger.Infof("gecho: %v Close() = %v", d.RemoteAddr(), err)
	return
}
