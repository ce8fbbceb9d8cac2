package syncutil

import (
	"sync"
	"testing"
)

func TestShardedMutex_SerializesSameKey(t *testing.T) {
	var sm ShardedMutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := sm.Lock("user-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("expected 100 increments, got %d", counter)
	}
}

func TestShardedMutex_IndependentKeys(t *testing.T) {
	var sm ShardedMutex

	unlockA := sm.Lock("alpha")
	// A key hashing to a different shard must not block.
	done := make(chan struct{})
	go func() {
		unlock := sm.Lock("beta")
		unlock()
		close(done)
	}()
	<-done
	unlockA()
}
