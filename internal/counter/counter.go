package counter

import "sync"

// Counter is an unbounded integer that only moves by one step at a time
// or back to the value it was created with.
type Counter struct {
	mu      sync.Mutex
	initial int
	count   int
}

func New(initial int) *Counter {
	return &Counter{initial: initial, count: initial}
}

func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count
}

func (c *Counter) Decrement() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count--
	return c.count
}

// Reset restores the value captured by New.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = c.initial
}

func (c *Counter) Set(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = v
}
