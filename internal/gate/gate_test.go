package gate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-social/internal/db/dbtest"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/gate"
	"github.com/oggyb/muzz-social/internal/repository"
)

func TestCanMessage(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	rel := repository.NewRelationshipRepository(gdb)
	g := gate.New(rel)

	// one-way like is not enough
	dbtest.Like(t, gdb, 1, 2)
	err := g.CanMessage(ctx, 1, 2)
	assert.True(t, svcErr.Is(err, svcErr.KindAuthorization))

	dbtest.Like(t, gdb, 2, 1)
	require.NoError(t, g.CanMessage(ctx, 1, 2))
	require.NoError(t, g.CanMessage(ctx, 2, 1))

	// re-evaluated on every call: a block wins over a match
	require.NoError(t, rel.Block(ctx, 2, 1))
	err = g.CanMessage(ctx, 1, 2)
	assert.True(t, svcErr.Is(err, svcErr.KindAuthorization))

	blocked, err := g.IsBlocked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestIsMutualMatch_Self(t *testing.T) {
	gdb := dbtest.Open(t)
	g := gate.New(repository.NewRelationshipRepository(gdb))

	ok, err := g.IsMutualMatch(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}
