package social

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func TestPairLocks_UnorderedAndReleased(t *testing.T) {
	locks := newPairLocks()

	unlock := locks.Lock(1, 2)
	acquired := make(chan struct{})
	go func() {
		u := locks.Lock(2, 1)
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("reversed pair acquired while held")
	default:
	}
	unlock()
	<-acquired

	assert.Eventually(t, func() bool { return locks.size() == 0 }, timeout, tick)
}

func TestPairLocks_DistinctPairsDoNotBlock(t *testing.T) {
	locks := newPairLocks()
	u1 := locks.Lock(1, 2)
	u2 := locks.Lock(1, 3)
	assert.Equal(t, 2, locks.size())
	u1()
	u2()
	assert.Equal(t, 0, locks.size())
}

func TestPairLocks_Contended(t *testing.T) {
	locks := newPairLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var unlock func()
			if i%2 == 0 {
				unlock = locks.Lock(7, 8)
			} else {
				unlock = locks.Lock(8, 7)
			}
			counter++
			unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.size())
}
