// Package reputation keeps the derived reputation score in line with the
// interaction tables.
package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oggyb/muzz-social/internal/cache"
	"github.com/oggyb/muzz-social/internal/keylock"
	"github.com/oggyb/muzz-social/internal/repository"
)

const (
	likeWeight   = 3
	visitWeight  = 1
	unlikeWeight = 2
)

// Score applies the reputation formula.
func Score(likers, visits, unlikers int64) int64 {
	return likeWeight*likers + visitWeight*visits - unlikeWeight*unlikers
}

// Updater is the only writer of the stored score.
//
// Work on one identity is serialized: a recompute and a cache refill for the
// same id never interleave, so neither the column nor the cache can be left
// holding an older value than the last recompute produced.
type Updater struct {
	rel   *repository.RelationshipRepository
	users *repository.UserRepository
	cache *cache.RedisCache // optional
	log   *slog.Logger
	locks *keylock.Locks[uint64]
}

func NewUpdater(
	rel *repository.RelationshipRepository,
	users *repository.UserRepository,
	rc *cache.RedisCache,
	log *slog.Logger,
) *Updater {
	return &Updater{rel: rel, users: users, cache: rc, log: log, locks: keylock.New[uint64]()}
}

// Recompute re-derives id's score from the three aggregates and overwrites
// the stored value, then evicts the cached entry so the next read refills it
// from the store.
func (u *Updater) Recompute(ctx context.Context, id uint64) (int64, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	likers, err := u.rel.CountLikers(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count likers: %w", err)
	}
	visits, err := u.rel.CountVisits(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	unlikers, err := u.rel.CountUnlikers(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count unlikers: %w", err)
	}

	score := Score(likers, visits, unlikers)
	if err := u.users.SetReputation(ctx, id, score); err != nil {
		return 0, fmt.Errorf("store score: %w", err)
	}

	if u.cache != nil {
		if err := u.cache.DelScore(ctx, id); err != nil {
			u.log.Warn("score cache eviction failed", "user", id, "err", err)
		}
	}

	u.log.Debug("reputation recomputed",
		"user", id, "likers", likers, "visits", visits, "unlikers", unlikers, "score", score)
	return score, nil
}

// Current returns id's score.
// Cache-first strategy:
//  1. Attempts to read from Redis (reputation:score:userID).
//  2. On miss or error, falls back to the stored value.
//  3. On DB fetch, refills Redis.
//
// The fallback runs under id's lock, so a refill cannot put back a value
// older than a recompute that finished meanwhile.
func (u *Updater) Current(ctx context.Context, id uint64) (int64, error) {
	if score, ok := u.cached(ctx, id); ok {
		return score, nil
	}

	unlock := u.locks.Lock(id)
	defer unlock()

	// another reader may have refilled while we waited
	if score, ok := u.cached(ctx, id); ok {
		return score, nil
	}

	score, err := u.users.Reputation(ctx, id)
	if err != nil {
		return 0, err
	}
	if u.cache != nil {
		_ = u.cache.SetScore(ctx, id, score)
	}
	return score, nil
}

func (u *Updater) cached(ctx context.Context, id uint64) (int64, bool) {
	if u.cache == nil {
		return 0, false
	}
	score, err := u.cache.GetScore(ctx, id)
	if err == nil {
		return score, true
	}
	if !errors.Is(err, cache.ErrMiss) {
		u.log.Warn("score cache read failed", "user", id, "err", err)
	}
	return 0, false
}
