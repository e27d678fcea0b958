// Package locker provides keyed in-process locking for coordinating
// concurrent operations on the same resource, such as collapsing
// simultaneous cache misses for one fingerprint into a single provider
// fetch.
package locker

import (
	"sync"
)

// KeyedLock serializes work per key. Different keys proceed
// independently; callers of the same key queue behind each other.
//
// Typical usage:
//
//	unlock := locks.Lock(cacheKey)
//	defer unlock()
//	// re-check the cache, then fetch on a confirmed miss
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty KeyedLock.
func New() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*keyLock)}
}

// Lock acquires the lock for key, blocking until it is available, and
// returns the release function. Lock entries are reference counted and
// removed once the last holder releases, so the map does not grow with
// the key space.
func (l *KeyedLock) Lock(key string) func() {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()

			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}
