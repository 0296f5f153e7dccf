package toggle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlag(t *testing.T) {
	f := New(false)
	assert.False(t, f.Value())

	f.SetTrue()
	assert.True(t, f.Value())
	f.SetTrue()
	assert.True(t, f.Value())

	f.SetFalse()
	assert.False(t, f.Value())

	assert.True(t, f.Toggle())
	assert.False(t, f.Toggle())

	f.Set(true)
	assert.True(t, New(true).Value())
	assert.True(t, f.Value())
}

func TestFlagToggleConcurrent(t *testing.T) {
	f := New(false)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Toggle()
		}()
	}
	wg.Wait()
	assert.False(t, f.Value(), "an even number of flips lands on the start value")
}
