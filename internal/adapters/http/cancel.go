package httpadapter

import (
	"context"
	"sync"
)

// cancelRegistry maps in-flight request ids to their context cancel
// functions. A respond handler registers its context before running the
// pipeline; the cancel endpoint looks the id up and fires it.
type cancelRegistry struct {
	mu      sync.Mutex
	pending map[string]context.CancelFunc
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{pending: make(map[string]context.CancelFunc)}
}

// register stores cancel under requestID and returns the release function
// the handler defers.
func (c *cancelRegistry) register(requestID string, cancel context.CancelFunc) func() {
	c.mu.Lock()
	c.pending[requestID] = cancel
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
		cancel()
	}
}

// cancel fires the registered cancel function and reports whether the
// request id was known.
func (c *cancelRegistry) cancel(requestID string) bool {
	c.mu.Lock()
	cancelFn, ok := c.pending[requestID]
	if ok {
		delete(c.pending, requestID)
	}
	c.mu.Unlock()

	if ok {
		cancelFn()
	}
	return ok
}
