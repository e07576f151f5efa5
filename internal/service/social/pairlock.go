package social

import (
	"github.com/oggyb/muzz-social/internal/keylock"
	"github.com/oggyb/muzz-social/internal/repository"
)

// pairLocks serializes relationship changes per unordered pair, so two
// concurrent likes from both sides cannot both miss the match.
type pairLocks struct {
	keys *keylock.Locks[repository.Pair]
}

func newPairLocks() *pairLocks {
	return &pairLocks{keys: keylock.New[repository.Pair]()}
}

// Lock blocks until the pair {a, b} is free and returns its unlock func.
func (p *pairLocks) Lock(a, b uint64) (unlock func()) {
	return p.keys.Lock(repository.NewPair(a, b))
}

func (p *pairLocks) size() int { return p.keys.Len() }
