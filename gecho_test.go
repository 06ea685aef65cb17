package gecho_test

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cat2neat/gecho"
)

type (
	debugNetConn struct {
		ReadFunc  func([]byte) (int, error)
		WriteFunc func([]byte) (int, error)
		Local     string
		Remote    string
		closed    int
	}
	nullLogger struct{}

	// recordLogger keeps every line so tests can look for them.
	recordLogger struct {
		mu     sync.Mutex
		infos  []string
		errors []string
	}
)

const (
	smashingInt = 1979
	waitTimeout = 2 * time.Second
)

var (
	errTest     = errors.New("errTest")
	smashingStr = strconv.FormatInt(smashingInt, 10)
	nl          = nullLogger{}
)

func (l nullLogger) Errorf(fmt string, args ...interface{}) {
	// nop
}

func (l nullLogger) Infof(fmt string, args ...interface{}) {
	// nop
}

func (l *recordLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordLogger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordLogger) count(substr string) (infos, errs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.infos {
		if strings.Contains(s, substr) {
			infos++
		}
	}
	for _, s := range l.errors {
		if strings.Contains(s, substr) {
			errs++
		}
	}
	return
}

func (l *recordLogger) errorLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

// waitFor polls until line shows up n times in either infos or errors.
func (l *recordLogger) waitFor(t *testing.T, line string, n int) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		infos, errs := l.count(line)
		if infos+errs >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("gecho_test: %q expected %d times before timeout\n", line, n)
}

func (dc *debugNetConn) Read(b []byte) (int, error) {
	return dc.ReadFunc(b)
}

func (dc *debugNetConn) Write(b []byte) (int, error) {
	return dc.WriteFunc(b)
}

func (dc *debugNetConn) Close() error {
	dc.closed++
	return nil
}

func (dc *debugNetConn) LocalAddr() net.Addr {
	return &net.TCPAddr{
		IP:   net.ParseIP(dc.Local),
		Port: smashingInt,
	}
}

func (dc *debugNetConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{
		IP:   net.ParseIP(dc.Remote),
		Port: smashingInt,
	}
}

func (dc *debugNetConn) SetDeadline(t time.Time) error {
	return nil
}

func (dc *debugNetConn) SetReadDeadline(t time.Time) error {
	return nil
}

func (dc *debugNetConn) SetWriteDeadline(t time.Time) error {
	return nil
}

// scriptedReads returns a ReadFunc handing out chunks one per call and
// then io.EOF-like err forever.
func scriptedReads(chunks []string, final error) func([]byte) (int, error) {
	i := 0
	return func(buf []byte) (int, error) {
		if i >= len(chunks) {
			return 0, final
		}
		n := copy(buf, chunks[i])
		i++
		return n, nil
	}
}

// startServer serves srv on a loopback port and closes it when the test ends.
func startServer(t *testing.T, srv *gecho.Server) string {
	t.Helper()
	ln, err := gecho.Listen("127.0.0.1:0", 0)
	if err != nil {
		t.Fatalf("gecho_test: Listen err: %+v\n", err)
	}
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ln)
	}()
	t.Cleanup(func() {
		srv.Close()
		if err := <-done; err != gecho.ErrServerClosed {
			t.Errorf("gecho_test: Serve expected: %v actual: %+v\n", gecho.ErrServerClosed, err)
		}
	})
	return ln.Addr().String()
}
