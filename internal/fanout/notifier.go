// Package fanout persists notifications and pushes them to reachable recipients.
package fanout

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/events"
	"github.com/oggyb/muzz-social/internal/presence"
	"github.com/oggyb/muzz-social/internal/repository"
)

// Notifier records a notification first and only then tries live delivery.
type Notifier struct {
	notifs *repository.NotificationRepository
	reg    *presence.Registry
	log    *slog.Logger
}

func NewNotifier(notifs *repository.NotificationRepository, reg *presence.Registry, log *slog.Logger) *Notifier {
	return &Notifier{notifs: notifs, reg: reg, log: log}
}

// WithTx returns a Notifier whose Record writes inside tx.
func (n *Notifier) WithTx(tx *gorm.DB) *Notifier {
	return &Notifier{notifs: n.notifs.WithTx(tx), reg: n.reg, log: n.log}
}

// Record persists a notification without delivering it.
func (n *Notifier) Record(
	ctx context.Context,
	recipientID uint64,
	typ db.NotificationType,
	originatorID uint64,
) (*db.Notification, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown notification type %q", typ)
	}
	rec := &db.Notification{RecipientID: recipientID, Type: typ, OriginatorID: originatorID}
	if err := n.notifs.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("record %s notification: %w", typ, err)
	}
	return rec, nil
}

// Deliver pushes already-persisted notifications to their recipients.
// Offline recipients are skipped. Returns how many were handed to a connection.
func (n *Notifier) Deliver(recs ...*db.Notification) int {
	delivered := 0
	for _, rec := range recs {
		if rec != nil && n.Push(rec.RecipientID, *rec) {
			delivered++
		}
	}
	return delivered
}

// Push delivers an already-persisted notification to identity if it is
// reachable. This is the live push entry point for other components.
func (n *Notifier) Push(identity uint64, rec db.Notification) bool {
	if identity != rec.RecipientID {
		n.log.Warn("push refused: notification belongs to someone else",
			"identity", identity, "notification", rec.ID, "recipient", rec.RecipientID)
		return false
	}
	ok := n.reg.Deliver(identity, ToEvent(rec))
	n.log.Debug("notification push", "recipient", identity, "type", rec.Type, "delivered", ok)
	return ok
}

// ToEvent converts a stored notification into its live event.
func ToEvent(rec db.Notification) events.NewNotification {
	return events.NewNotification{
		ID:               rec.ID,
		NotificationType: string(rec.Type),
		OriginatorID:     rec.OriginatorID,
		CreatedAt:        rec.CreatedAt,
	}
}
