package gecho

import (
	"fmt"
	"sync"
)

type (
	// Statistics is the interface that wraps operations for accumulating Conn statistics.
	Statistics interface {
		// AddConnStats adds the statistics of a closed Conn.
		AddConnStats(Conn)
		// Snapshot returns the totals accumulated so far.
		Snapshot() TrafficSnapshot
		// Reset clears statistics holden now.
		Reset()
		// String returns a string that represents the current statistics.
		String() string
	}

	// TrafficSnapshot is a point-in-time copy of the traffic totals.
	TrafficSnapshot struct {
		Conns    int64
		InBytes  int64
		OutBytes int64
	}

	// TrafficStatistics implements Statistics to hold the in/out traffic on a gecho server.
	TrafficStatistics struct {
		mu    sync.RWMutex
		total TrafficSnapshot
	}
)

// AddConnStats ingests inBytes and outBytes from conn.
// Byte counts stay zero unless StatsConn is part of Server.NewConn.
func (ts *TrafficStatistics) AddConnStats(conn Conn) {
	in, out := conn.Stats()
	ts.mu.Lock()
	ts.total.Conns++
	ts.total.InBytes += in
	ts.total.OutBytes += out
	ts.mu.Unlock()
}

func (ts *TrafficStatistics) Snapshot() (snap TrafficSnapshot) {
	ts.mu.RLock()
	snap = ts.total
	ts.mu.RUnlock()
	return
}

// Reset clears statistics holden now.
func (ts *TrafficStatistics) Reset() {
	ts.mu.Lock()
	ts.total = TrafficSnapshot{}
	ts.mu.Unlock()
}

// String returns the traffic on a gecho server as a json string.
func (ts *TrafficStatistics) String() string {
	snap := ts.Snapshot()
	return fmt.Sprintf(`{"conns": %d, "in_bytes": %d, "out_bytes": %d}`,
		snap.Conns, snap.InBytes, snap.OutBytes)
}
