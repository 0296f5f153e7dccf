package counter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterSteps(t *testing.T) {
	c := New(0)
	assert.Equal(t, 0, c.Count())

	assert.Equal(t, 1, c.Increment())
	assert.Equal(t, 2, c.Increment())
	assert.Equal(t, 1, c.Decrement())
	assert.Equal(t, 0, c.Decrement())
	assert.Equal(t, -1, c.Decrement())
	assert.Equal(t, -1, c.Count())
}

func TestCounterResetUsesInitial(t *testing.T) {
	c := New(7)
	c.Decrement()
	c.Set(42)
	c.Increment()
	assert.Equal(t, 43, c.Count())

	c.Reset()
	assert.Equal(t, 7, c.Count())
}

func TestCounterConcurrent(t *testing.T) {
	c := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Increment()
		}()
		go func() {
			defer wg.Done()
			c.Increment()
			c.Decrement()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Count())
}
