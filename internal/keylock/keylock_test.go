package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/muzz-social/internal/keylock"
)

func TestLock_SerializesSameKey(t *testing.T) {
	locks := keylock.New[uint64]()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(7)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, locks.Len())
}

func TestLock_DistinctKeysIndependent(t *testing.T) {
	locks := keylock.New[string]()
	a := locks.Lock("a")
	b := locks.Lock("b")
	assert.Equal(t, 2, locks.Len())
	a()
	b()
	assert.Equal(t, 0, locks.Len())
}
