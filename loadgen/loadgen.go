// Package loadgen opens several simultaneous connections to a gecho server,
// sends one message on each and reads one echo back.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddr    = "127.0.0.1:8080"
	DefaultConns   = 5
	DefaultMessage = "hello system programming course"

	// readSize mirrors a 1KiB buffer that keeps one byte for a terminator.
	readSize = 1023
)

// ErrNoResponse is reported when the server closed the connection before
// sending anything back.
var ErrNoResponse = errors.New("loadgen: read failed or server closed connection")

type (
	// Config describes one load run. Zero fields take the Default values.
	Config struct {
		Addr        string
		Conns       int
		Message     string
		DialTimeout time.Duration
		// Out receives the per-connection progress lines. Nil discards them.
		Out io.Writer
	}

	// Result is the outcome of one connection.
	Result struct {
		ID       int
		Sent     string
		Received string
		Err      error
	}
)

// Payload is the message connection id sends.
func Payload(id int, msg string) string {
	return fmt.Sprintf("thread %d: %s", id, msg)
}

// Run opens cfg.Conns connections at once and waits for all of them. A
// failing connection never stops the others. The returned error is the
// first failure, if any; every outcome is in the results.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Conns <= 0 {
		cfg.Conns = DefaultConns
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	out := &lockedWriter{w: cfg.Out}

	results := make([]Result, cfg.Conns)
	var g errgroup.Group
	for i := range cfg.Conns {
		g.Go(func() error {
			results[i] = roundTrip(ctx, cfg, i, out)
			return results[i].Err
		})
	}
	err := g.Wait()
	return results, err
}

func roundTrip(ctx context.Context, cfg Config, id int, out *lockedWriter) Result {
	res := Result{ID: id, Sent: Payload(id, cfg.Message)}
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		res.Err = fmt.Errorf("loadgen: thread %d: connect: %w", id, err)
		out.printf("Thread %d: Connection failed: %v\n", id, err)
		return res
	}
	defer conn.Close()

	out.printf("Thread %d: Sending -> %s\n", id, res.Sent)
	if _, err = conn.Write([]byte(res.Sent)); err != nil {
		res.Err = fmt.Errorf("loadgen: thread %d: write: %w", id, err)
		out.printf("Thread %d: Write failed: %v\n", id, err)
		return res
	}

	buf := make([]byte, readSize)
	n, err := conn.Read(buf)
	if n <= 0 {
		if err == nil || err == io.EOF {
			err = ErrNoResponse
		}
		res.Err = fmt.Errorf("loadgen: thread %d: %w", id, err)
		out.printf("Thread %d: Read failed or server closed connection\n", id)
		return res
	}
	res.Received = string(buf[:n])
	out.printf("Thread %d: Received -> %s\n", id, res.Received)
	return res
}

// lockedWriter keeps lines from different connections from interleaving.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) printf(format string, args ...interface{}) {
	if lw.w == nil {
		return
	}
	lw.mu.Lock()
	fmt.Fprintf(lw.w, format, args...)
	lw.mu.Unlock()
}
