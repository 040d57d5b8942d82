package keylock

import (
	"sync"
	"testing"
)

func TestTryLockExcludesSameKey(t *testing.T) {
	kl := New()

	if !kl.TryLock(1) {
		t.Fatal("first TryLock must succeed")
	}
	if kl.TryLock(1) {
		t.Fatal("second TryLock on held key must fail")
	}
	if !kl.TryLock(2) {
		t.Fatal("TryLock on another key must succeed")
	}

	kl.Unlock(1)
	kl.Unlock(2)

	if !kl.TryLock(1) {
		t.Fatal("TryLock after Unlock must succeed")
	}
	kl.Unlock(1)
}

func TestLockWaitsForHolder(t *testing.T) {
	kl := New()
	kl.Lock(7)

	acquired := make(chan struct{})
	go func() {
		kl.Lock(7)
		close(acquired)
		kl.Unlock(7)
	}()

	select {
	case <-acquired:
		t.Fatal("Lock acquired while key was held")
	default:
	}

	kl.Unlock(7)
	<-acquired
}

func TestEntriesAreReleased(t *testing.T) {
	kl := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(key int64) {
			defer wg.Done()
			kl.Lock(key % 5)
			kl.Unlock(key % 5)
		}(int64(i))
	}
	wg.Wait()

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if len(kl.entries) != 0 {
		t.Errorf("%d entries leaked after all unlocks", len(kl.entries))
	}
}
