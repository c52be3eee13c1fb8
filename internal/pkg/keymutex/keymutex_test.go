//go:build unit

package keymutex_test

import (
	"sync"
	"testing"

	"locker-booking/internal/pkg/keymutex"

	"github.com/stretchr/testify/assert"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	km := keymutex.New[string]()

	const iterations = 200
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := km.Lock("venue-1/3")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*iterations, counter)
	assert.Equal(t, 0, km.Len(), "entries must be reclaimed after release")
}

func TestKeyMutexIndependentKeys(t *testing.T) {
	km := keymutex.New[string]()

	unlockA := km.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("b")
		unlockB()
		close(done)
	}()

	<-done // must not deadlock while "a" is held
	assert.Equal(t, 1, km.Len())
}
