package workpool

import "sync/atomic"

// Flag is a cooperative cancellation signal shared by every pool level and
// subprocess poll loop of a batch. The zero value is unset and ready to use.
type Flag struct {
	set atomic.Bool
}

// Set raises the flag. It is safe to call repeatedly.
func (f *Flag) Set() {
	if f != nil {
		f.set.Store(true)
	}
}

// Reset lowers the flag at the start of a new batch.
func (f *Flag) Reset() {
	if f != nil {
		f.set.Store(false)
	}
}

// IsSet reports whether cancellation was requested. A nil Flag is never set.
func (f *Flag) IsSet() bool {
	return f != nil && f.set.Load()
}
