package locker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLock_SerializesSameKey(t *testing.T) {
	l := New()

	const workers = 20
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("same")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedLock_DifferentKeysDoNotBlock(t *testing.T) {
	l := New()

	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("b")
		unlockB()
		close(done)
	}()

	<-done // must complete while "a" is still held
	unlockA()
}

func TestKeyedLock_ReleaseIsIdempotent(t *testing.T) {
	l := New()

	unlock := l.Lock("k")
	unlock()
	unlock() // second call is a no-op

	// Lock is available again.
	unlock2 := l.Lock("k")
	unlock2()
}

func TestKeyedLock_MapDoesNotGrow(t *testing.T) {
	l := New()

	for i := 0; i < 100; i++ {
		unlock := l.Lock("k")
		unlock()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks, "released keys must be removed from the map")
}
