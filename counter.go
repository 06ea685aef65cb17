package gecho

import "sync"

// Counter counts the connections currently owned by a live worker.
// The count is only reachable through Enter and Exit, both serialized by
// a single mutex.
type Counter struct {
	mu     sync.Mutex
	active int
}

// Enter increments the count and returns the new value. report, if not
// nil, is called with the new value while the lock is still held so that
// reports are produced in the same order as the updates.
func (c *Counter) Enter(report func(active int)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active++
	if report != nil {
		report(c.active)
	}
	return c.active
}

// Exit decrements the count and returns the new value. It panics when
// called more times than Enter.
func (c *Counter) Exit(report func(active int)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == 0 {
		panic("gecho: Counter.Exit without matching Enter")
	}
	c.active--
	if report != nil {
		report(c.active)
	}
	return c.active
}
