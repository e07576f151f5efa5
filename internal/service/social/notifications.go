package social

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/utils/pagination"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PushNotification delivers an already-persisted notification to identity.
// The notification must belong to identity. Reports whether it reached a
// live connection.
func (e *Engine) PushNotification(ctx context.Context, identity, notificationID uint64) (bool, error) {
	rec, err := e.notifs.Get(storeCtx(ctx), notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, svcErr.Validation("notification not found")
	}
	if err != nil {
		return false, e.fail(ctx, "push_notification", identity, 0, err)
	}
	if rec.RecipientID != identity {
		return false, svcErr.Forbidden("notification belongs to another user")
	}
	return e.notifier.Push(identity, *rec), nil
}

// ListNotifications returns one page of recipient's notifications, newest
// first, plus the token for the next page (nil on the last page).
func (e *Engine) ListNotifications(
	ctx context.Context,
	recipient uint64,
	token *string,
	limit int,
) ([]db.Notification, *string, error) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	items, next, err := e.notifs.List(storeCtx(ctx), recipient, token, limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidToken) {
			return nil, nil, svcErr.Validation(err.Error())
		}
		return nil, nil, e.fail(ctx, "list_notifications", recipient, 0, err)
	}
	return items, next, nil
}

// MarkNotificationsRead flips every unread notification of recipient.
func (e *Engine) MarkNotificationsRead(ctx context.Context, recipient uint64) (int64, error) {
	n, err := e.notifs.MarkAllRead(storeCtx(ctx), recipient)
	if err != nil {
		return 0, e.fail(ctx, "mark_notifications_read", recipient, 0, err)
	}
	return n, nil
}

// Presence is what other users may learn about someone's connectivity.
type Presence struct {
	Online   bool
	LastSeen *time.Time
}

// Presence reports whether id is reachable right now and when it was last
// seen connecting or disconnecting.
func (e *Engine) Presence(ctx context.Context, id uint64) (Presence, error) {
	_, online := e.reg.Lookup(id)
	seen, err := e.users.LastSeen(storeCtx(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Presence{}, svcErr.Validation("user not found")
	}
	if err != nil {
		return Presence{}, e.fail(ctx, "presence", id, 0, err)
	}
	return Presence{Online: online, LastSeen: seen}, nil
}
