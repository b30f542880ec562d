package server

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()

	const workers = 8
	const iterations = 200

	counter := 0
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				km.Lock("note-a")
				counter++
				km.Unlock("note-a")
			}
		}()
	}
	wg.Wait()

	if want := workers * iterations; counter != want {
		t.Fatalf("counter = %d, want %d", counter, want)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	km.Lock("note-a")

	// A different key must be acquirable while note-a is held.
	done := make(chan struct{})
	go func() {
		km.Lock("note-b")
		km.Unlock("note-b")
		close(done)
	}()
	<-done

	km.Unlock("note-a")
}

func TestKeyedMutexDiscardsIdleLocks(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	for _, key := range []string{"a", "b", "c"} {
		km.Lock(key)
		km.Unlock(key)
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("len(locks) = %d after all unlocks, want 0", len(km.locks))
	}
}
