package analyzer

import "sync/atomic"

// RunLock rejects a second analysis while one is running instead of
// queueing it
type RunLock struct {
	state atomic.Int32 // 0 = idle, 1 = running
}

// TryAcquire reports whether the lock was free and is now held
func (l *RunLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock. Only the holder may call it.
func (l *RunLock) Release() {
	l.state.Store(0)
}

// Running reports whether the lock is held
func (l *RunLock) Running() bool {
	return l.state.Load() == 1
}
