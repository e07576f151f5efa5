package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/db/dbtest"
	"github.com/oggyb/muzz-social/internal/repository"
)

func TestLike_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	created, err := repo.Like(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Like(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created, "duplicate like must be a no-op")

	assert.Equal(t, int64(1), dbtest.Count(t, gdb, &db.Like{}, ""))
}

func TestIsMutual_DerivedFromBothEdges(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	_, _ = repo.Like(ctx, 1, 2)
	mutual, err := repo.IsMutual(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, mutual)

	_, _ = repo.Like(ctx, 2, 1)
	mutual, err = repo.IsMutual(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, mutual)

	removed, err := repo.DeleteLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	mutual, _ = repo.IsMutual(ctx, 1, 2)
	assert.False(t, mutual, "match dissolves as soon as one edge is gone")

	removed, err = repo.DeleteLike(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestIsBlocked_EitherDirection(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	require.NoError(t, repo.Block(ctx, 1, 2))
	require.NoError(t, repo.Block(ctx, 1, 2))

	blocked, err := repo.IsBlocked(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, _ = repo.IsBlocked(ctx, 1, 3)
	assert.False(t, blocked)
}

func TestSeverLikes_BothDirections(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	_, _ = repo.Like(ctx, 1, 2)
	_, _ = repo.Like(ctx, 2, 1)
	_, _ = repo.Like(ctx, 3, 1)

	n, err := repo.SeverLikes(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, int64(1), dbtest.Count(t, gdb, &db.Like{}, ""))
}

func TestMatchedWith(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	// 1 <-> 2, 1 <-> 4 mutual; 1 -> 3 one way; 5 -> 1 one way
	for _, e := range [][2]uint64{{1, 2}, {2, 1}, {1, 3}, {5, 1}, {4, 1}, {1, 4}} {
		_, err := repo.Like(ctx, e[0], e[1])
		require.NoError(t, err)
	}

	ids, err := repo.MatchedWith(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 4}, ids)

	ids, err = repo.MatchedWith(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAggregateCounts(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	_, _ = repo.Like(ctx, 1, 9)
	_, _ = repo.Like(ctx, 2, 9)
	require.NoError(t, repo.RecordVisit(ctx, 3, 9))
	require.NoError(t, repo.RecordVisit(ctx, 3, 9))
	require.NoError(t, repo.RecordUnlike(ctx, 4, 9))
	require.NoError(t, repo.RecordUnlike(ctx, 4, 9))

	likers, err := repo.CountLikers(ctx, 9)
	require.NoError(t, err)
	visits, err := repo.CountVisits(ctx, 9)
	require.NoError(t, err)
	unlikers, err := repo.CountUnlikers(ctx, 9)
	require.NoError(t, err)

	assert.Equal(t, int64(2), likers)
	assert.Equal(t, int64(2), visits, "every visit counts")
	assert.Equal(t, int64(1), unlikers, "unlikers are distinct")
}

func TestUnnotifiedMatches(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewRelationshipRepository(gdb)

	_, _ = repo.Like(ctx, 1, 2)
	_, _ = repo.Like(ctx, 2, 1)
	_, _ = repo.Like(ctx, 3, 4)
	_, _ = repo.Like(ctx, 4, 3)

	pairs, err := repo.UnnotifiedMatches(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []repository.Pair{{A: 1, B: 2}, {A: 3, B: 4}}, pairs)

	require.NoError(t, gdb.Create(&db.Notification{RecipientID: 4, Type: db.NotificationMatch, OriginatorID: 3}).Error)

	pairs, err = repo.UnnotifiedMatches(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []repository.Pair{{A: 1, B: 2}}, pairs)

	pending, err := repo.HasUnnotifiedMatch(ctx, repository.NewPair(2, 1))
	require.NoError(t, err)
	assert.True(t, pending)

	pending, err = repo.HasUnnotifiedMatch(ctx, repository.NewPair(3, 4))
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestNewPair_Orders(t *testing.T) {
	assert.Equal(t, repository.Pair{A: 3, B: 7}, repository.NewPair(7, 3))
	assert.Equal(t, repository.NewPair(3, 7), repository.NewPair(7, 3))
}
