package db

import "sync"

// DateLocks serializes work on the same date within one process. Stores without a
// shared lock service use it to implement LockDate.
type DateLocks struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	mu      sync.Mutex
	waiters int
}

func NewDateLocks() *DateLocks {
	return &DateLocks{locks: make(map[string]*dateLock)}
}

// Lock blocks until the date is free and returns the matching unlock
func (d *DateLocks) Lock(date string) func() {
	d.mu.Lock()
	l, ok := d.locks[date]
	if !ok {
		l = &dateLock{}
		d.locks[date] = l
	}
	l.waiters++
	d.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		d.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(d.locks, date)
		}
		d.mu.Unlock()
	}
}
