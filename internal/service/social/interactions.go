package social

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/repository"
)

// LikeResult tells the caller what a like turned into.
type LikeResult struct {
	// Matched is true when both likes now exist.
	Matched bool
	// AlreadyLiked is true when the like existed before; nothing else happened.
	AlreadyLiked bool
}

// UnlikeResult tells the caller what an unlike undid.
type UnlikeResult struct {
	// Removed is false when there was no like to remove.
	Removed bool
	// Unmatched is true when the removed like dissolved a match, so the
	// counterpart's chat access should be revoked.
	Unmatched bool
}

// requireUser validates that target names another, existing account.
func (e *Engine) requireUser(ctx context.Context, action string, actor, target uint64) error {
	if target == 0 {
		return svcErr.Validation("target user is required")
	}
	if target == actor {
		return svcErr.Validation("cannot " + action + " yourself")
	}
	exists, err := e.users.Exists(ctx, target)
	if err != nil {
		return e.fail(ctx, action, actor, target, err)
	}
	if !exists {
		return svcErr.Validation("user not found")
	}
	return nil
}

// Like records actor -> target.
//
// Behavior:
//   - Rejected for self, for an actor without a profile picture, and for a
//     blocked pair.
//   - A repeated like changes nothing and notifies nobody.
//   - If target already liked actor this is a new match: both get a match
//     notification. Otherwise target gets a like notification.
//   - The like and its notifications commit together; then target's score is
//     recomputed, then reachable recipients are notified live.
func (e *Engine) Like(ctx context.Context, actor, target uint64) (LikeResult, error) {
	const action = "like"
	store := storeCtx(ctx)

	if err := e.requireUser(store, action, actor, target); err != nil {
		return LikeResult{}, err
	}
	hasImage, err := e.profiles.HasProfileImage(store, actor)
	if err != nil {
		return LikeResult{}, e.fail(ctx, action, actor, target, err)
	}
	if !hasImage {
		return LikeResult{}, svcErr.Forbidden("add a profile picture before liking someone")
	}

	unlock := e.locks.Lock(actor, target)
	defer unlock()

	var (
		res   LikeResult
		recs  []*db.Notification
		fresh bool
	)
	err = e.db.WithContext(store).Transaction(func(tx *gorm.DB) error {
		rel := e.rel.WithTx(tx)
		notifier := e.notifier.WithTx(tx)

		blocked, err := rel.IsBlocked(store, actor, target)
		if err != nil {
			return err
		}
		if blocked {
			return svcErr.Forbidden("you cannot like this user")
		}

		fresh, err = rel.Like(store, actor, target)
		if err != nil {
			return err
		}
		if !fresh {
			res.AlreadyLiked = true
			res.Matched, err = rel.IsMutual(store, actor, target)
			return err
		}

		res.Matched, err = rel.HasLiked(store, target, actor)
		if err != nil {
			return err
		}
		if res.Matched {
			forActor, err := notifier.Record(store, actor, db.NotificationMatch, target)
			if err != nil {
				return err
			}
			forTarget, err := notifier.Record(store, target, db.NotificationMatch, actor)
			if err != nil {
				return err
			}
			recs = append(recs, forActor, forTarget)
			return nil
		}
		forTarget, err := notifier.Record(store, target, db.NotificationLike, actor)
		if err != nil {
			return err
		}
		recs = append(recs, forTarget)
		return nil
	})
	if err != nil {
		if svcErr.Is(err, svcErr.KindAuthorization) {
			return LikeResult{}, err
		}
		return LikeResult{}, e.fail(ctx, action, actor, target, err)
	}
	if !fresh {
		return res, nil
	}

	e.recompute(store, target)
	e.notifier.Deliver(recs...)

	e.log.Info("like recorded", "actor", actor, "target", target, "matched", res.Matched)
	return res, nil
}

// Unlike removes actor -> target.
//
// Behavior:
//   - Whether a match existed is read in the same transaction as the delete.
//   - The unlike is remembered (distinct per pair) for the reputation penalty
//     and target gets an unlike notification.
//   - Unliking someone never liked is a no-op.
func (e *Engine) Unlike(ctx context.Context, actor, target uint64) (UnlikeResult, error) {
	const action = "unlike"
	store := storeCtx(ctx)

	if target == 0 || target == actor {
		return UnlikeResult{}, svcErr.Validation("invalid unlike target")
	}

	unlock := e.locks.Lock(actor, target)
	defer unlock()

	var (
		res UnlikeResult
		rec *db.Notification
	)
	err := e.db.WithContext(store).Transaction(func(tx *gorm.DB) error {
		rel := e.rel.WithTx(tx)

		wasMatch, err := rel.IsMutual(store, actor, target)
		if err != nil {
			return err
		}
		res.Removed, err = rel.DeleteLike(store, actor, target)
		if err != nil || !res.Removed {
			return err
		}
		res.Unmatched = wasMatch

		if err := rel.RecordUnlike(store, actor, target); err != nil {
			return err
		}
		rec, err = e.notifier.WithTx(tx).Record(store, target, db.NotificationUnlike, actor)
		return err
	})
	if err != nil {
		return UnlikeResult{}, e.fail(ctx, action, actor, target, err)
	}
	if !res.Removed {
		return res, nil
	}

	e.recompute(store, target)
	e.notifier.Deliver(rec)

	e.log.Info("unlike recorded", "actor", actor, "target", target, "unmatched", res.Unmatched)
	return res, nil
}

// Visit records viewer looking at owner's profile.
// Self-views are never recorded. Views across a block are dropped silently.
// Reports whether the visit was recorded.
func (e *Engine) Visit(ctx context.Context, viewer, owner uint64) (bool, error) {
	const action = "visit"
	store := storeCtx(ctx)

	if owner == viewer {
		return false, nil
	}
	if err := e.requireUser(store, action, viewer, owner); err != nil {
		return false, err
	}
	blocked, err := e.gate.IsBlocked(store, viewer, owner)
	if err != nil {
		return false, e.fail(ctx, action, viewer, owner, err)
	}
	if blocked {
		return false, nil
	}

	var rec *db.Notification
	err = e.db.WithContext(store).Transaction(func(tx *gorm.DB) error {
		if err := e.rel.WithTx(tx).RecordVisit(store, viewer, owner); err != nil {
			return err
		}
		var err error
		rec, err = e.notifier.WithTx(tx).Record(store, owner, db.NotificationVisit, viewer)
		return err
	})
	if err != nil {
		return false, e.fail(ctx, action, viewer, owner, err)
	}

	e.recompute(store, owner)
	e.notifier.Deliver(rec)
	return true, nil
}

// Block records actor blocking target and severs any likes between them in
// both directions. The blocked user is not told. Returns how many likes were
// removed.
func (e *Engine) Block(ctx context.Context, actor, target uint64) (int64, error) {
	const action = "block"
	store := storeCtx(ctx)

	if err := e.requireUser(store, action, actor, target); err != nil {
		return 0, err
	}

	unlock := e.locks.Lock(actor, target)
	defer unlock()

	var severed int64
	err := e.db.WithContext(store).Transaction(func(tx *gorm.DB) error {
		rel := e.rel.WithTx(tx)
		if err := rel.Block(store, actor, target); err != nil {
			return err
		}
		var err error
		severed, err = rel.SeverLikes(store, actor, target)
		return err
	})
	if err != nil {
		return 0, e.fail(ctx, action, actor, target, err)
	}

	// removed likes change both scores
	if severed > 0 {
		e.recompute(store, actor)
		e.recompute(store, target)
	}

	e.log.Info("block recorded", "actor", actor, "target", target, "severed_likes", severed)
	return severed, nil
}

// Reconcile notifies up to limit matches that exist in the store but were
// never announced, e.g. likes written outside the engine. Returns how many
// matches it announced.
func (e *Engine) Reconcile(ctx context.Context, limit int) (int, error) {
	store := storeCtx(ctx)

	pairs, err := e.rel.UnnotifiedMatches(store, limit)
	if err != nil {
		return 0, err
	}

	announced := 0
	for _, p := range pairs {
		ok, err := e.announceMatch(store, p)
		if err != nil {
			e.log.Error("reconcile match failed", "a", p.A, "b", p.B, "err", err)
			continue
		}
		if ok {
			announced++
		}
	}
	if announced > 0 {
		e.log.Info("reconciled matches", "announced", announced)
	}
	return announced, nil
}

func (e *Engine) announceMatch(ctx context.Context, p repository.Pair) (bool, error) {
	unlock := e.locks.Lock(p.A, p.B)
	defer unlock()

	var recs []*db.Notification
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := e.rel.WithTx(tx).HasUnnotifiedMatch(ctx, p)
		if err != nil || !pending {
			return err
		}
		notifier := e.notifier.WithTx(tx)
		forA, err := notifier.Record(ctx, p.A, db.NotificationMatch, p.B)
		if err != nil {
			return err
		}
		forB, err := notifier.Record(ctx, p.B, db.NotificationMatch, p.A)
		if err != nil {
			return err
		}
		recs = append(recs, forA, forB)
		return nil
	})
	if err != nil || len(recs) == 0 {
		return false, err
	}

	e.notifier.Deliver(recs...)
	return true, nil
}
