// Package toggle holds a boolean flag with explicit set and flip operations.
package toggle

import "sync/atomic"

type Flag struct {
	v atomic.Bool
}

func New(defaultValue bool) *Flag {
	f := &Flag{}
	f.v.Store(defaultValue)
	return f
}

func (f *Flag) Value() bool { return f.v.Load() }

func (f *Flag) Set(v bool) { f.v.Store(v) }

func (f *Flag) SetTrue() { f.v.Store(true) }

func (f *Flag) SetFalse() { f.v.Store(false) }

// Toggle flips the flag and returns the new value.
func (f *Flag) Toggle() bool {
	for {
		old := f.v.Load()
		if f.v.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
