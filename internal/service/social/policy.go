package social

import (
	"context"
	"log/slog"

	svcErr "github.com/oggyb/muzz-social/internal/errors"
)

// Failure describes an action abandoned because the store failed.
type Failure struct {
	Action string
	Actor  uint64
	Target uint64
	Err    error
}

// FailurePolicy decides what happens when an action's store work fails.
// The returned error is what the actor sees.
//
// Every persistence failure in the engine goes through exactly one call to
// the policy, after the transaction was rolled back.
type FailurePolicy func(ctx context.Context, f Failure) error

// ActorOnly logs the failure and reports a generic persistence error to the
// actor. The counterpart is told nothing.
func ActorOnly(log *slog.Logger) FailurePolicy {
	return func(ctx context.Context, f Failure) error {
		log.Error("action abandoned",
			"action", f.Action, "actor", f.Actor, "target", f.Target, "err", f.Err)
		return svcErr.Persistence(f.Action, f.Err)
	}
}

func (e *Engine) fail(ctx context.Context, action string, actor, target uint64, err error) error {
	return e.policy(ctx, Failure{Action: action, Actor: actor, Target: target, Err: err})
}
