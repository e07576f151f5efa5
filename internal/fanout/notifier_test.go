package fanout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/db/dbtest"
	"github.com/oggyb/muzz-social/internal/events"
	"github.com/oggyb/muzz-social/internal/fanout"
	"github.com/oggyb/muzz-social/internal/logger"
	"github.com/oggyb/muzz-social/internal/presence"
	"github.com/oggyb/muzz-social/internal/presence/presencetest"
	"github.com/oggyb/muzz-social/internal/repository"
)

func setupNotifier(t *testing.T) (*fanout.Notifier, *presence.Registry, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t)
	reg := presence.NewRegistry()
	return fanout.NewNotifier(repository.NewNotificationRepository(gdb), reg, logger.Discard()), reg, gdb
}

func TestRecordDeliver_PersistsRegardlessOfReachability(t *testing.T) {
	ctx := context.Background()
	n, reg, gdb := setupNotifier(t)

	online := presencetest.NewRecorder("online")
	reg.Register(1, online)

	forOnline, err := n.Record(ctx, 1, db.NotificationVisit, 5)
	require.NoError(t, err)
	forOffline, err := n.Record(ctx, 2, db.NotificationVisit, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Deliver(forOnline, forOffline))

	assert.Equal(t, int64(2), dbtest.Count(t, gdb, &db.Notification{}, ""))
	require.Equal(t, []events.Kind{events.KindNewNotification}, online.Kinds())

	ev := online.Events()[0].(events.NewNotification)
	assert.Equal(t, "visit", ev.NotificationType)
	assert.Equal(t, uint64(5), ev.OriginatorID)
}

func TestRecord_RejectsUnknownType(t *testing.T) {
	n, _, _ := setupNotifier(t)

	_, err := n.Record(context.Background(), 1, db.NotificationType("poke"), 2)
	assert.Error(t, err)
}

func TestWithTx_RollbackLeavesNothing(t *testing.T) {
	ctx := context.Background()
	n, reg, gdb := setupNotifier(t)
	rec := presencetest.NewRecorder("r")
	reg.Register(3, rec)

	boom := errors.New("boom")
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := n.WithTx(tx).Record(ctx, 3, db.NotificationLike, 4); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, int64(0), dbtest.Count(t, gdb, &db.Notification{}, ""))
	assert.Empty(t, rec.Events(), "Record never delivers")
}

func TestPush(t *testing.T) {
	n, reg, _ := setupNotifier(t)
	rec := presencetest.NewRecorder("r")
	reg.Register(3, rec)

	stored := db.Notification{ID: 10, RecipientID: 3, Type: db.NotificationMatch, OriginatorID: 4}

	assert.True(t, n.Push(3, stored))
	assert.False(t, n.Push(4, stored), "wrong identity")
	assert.False(t, n.Push(9, db.Notification{ID: 11, RecipientID: 9}), "recipient offline")
	assert.Equal(t, 1, n.Deliver(&stored, nil))
	assert.Equal(t, 2, rec.Count(events.KindNewNotification))
}
