// Package gate decides whether two identities may interact.
// Every check reads the store fresh; nothing is cached.
package gate

import (
	"context"
	"fmt"

	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/repository"
)

// Gate wraps the relationship predicates.
type Gate struct {
	rel *repository.RelationshipRepository
}

func New(rel *repository.RelationshipRepository) *Gate {
	return &Gate{rel: rel}
}

// IsMutualMatch is true iff a -> b and b -> a both exist.
func (g *Gate) IsMutualMatch(ctx context.Context, a, b uint64) (bool, error) {
	return g.rel.IsMutual(ctx, a, b)
}

// IsBlocked is true iff a block exists in either direction.
func (g *Gate) IsBlocked(ctx context.Context, a, b uint64) (bool, error) {
	return g.rel.IsBlocked(ctx, a, b)
}

// CanMessage returns nil when sender may message receiver right now,
// an authorization error when not, or a plain error when the store failed.
func (g *Gate) CanMessage(ctx context.Context, sender, receiver uint64) error {
	blocked, err := g.IsBlocked(ctx, sender, receiver)
	if err != nil {
		return fmt.Errorf("block check: %w", err)
	}
	if blocked {
		return svcErr.Forbidden("you cannot message this user")
	}

	matched, err := g.IsMutualMatch(ctx, sender, receiver)
	if err != nil {
		return fmt.Errorf("match check: %w", err)
	}
	if !matched {
		return svcErr.Forbidden("you can only message your matches")
	}
	return nil
}
