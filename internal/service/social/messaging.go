package social

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/events"
)

const maxMessageRunes = 2000

// SendMessage persists a message from the session user to receiver and fans
// it out.
//
// Behavior:
//   - Empty (after trimming) or oversized content is a validation error.
//   - Sender and receiver must be matched and not blocked, checked on every send.
//   - The message and the receiver's notification are written in one
//     transaction; nothing is delivered unless it commits.
//   - After commit: message_sent to the sender, new_message and
//     new_notification to the receiver if reachable.
func (e *Engine) SendMessage(ctx context.Context, sess Session, receiverID uint64, content string) (*db.Message, error) {
	sender := sess.UserID
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return nil, svcErr.Validation("message content must not be empty")
	case utf8.RuneCountInString(content) > maxMessageRunes:
		return nil, svcErr.Validation("message is too long")
	case receiverID == sender:
		return nil, svcErr.Validation("cannot message yourself")
	}

	store := storeCtx(ctx)
	if err := e.gate.CanMessage(store, sender, receiverID); err != nil {
		if svcErr.Is(err, svcErr.KindAuthorization) {
			e.log.Debug("message refused", "sender", sender, "receiver", receiverID, "reason", svcErr.Public(err))
			return nil, err
		}
		return nil, e.fail(ctx, string(events.ActionSendMessage), sender, receiverID, err)
	}

	msg := &db.Message{SenderID: sender, ReceiverID: receiverID, Content: content}
	var notif *db.Notification
	err := e.db.WithContext(store).Transaction(func(tx *gorm.DB) error {
		if err := e.msgs.WithTx(tx).Create(store, msg); err != nil {
			return err
		}
		var err error
		notif, err = e.notifier.WithTx(tx).Record(store, receiverID, db.NotificationMessage, sender)
		return err
	})
	if err != nil {
		return nil, e.fail(ctx, string(events.ActionSendMessage), sender, receiverID, err)
	}

	sess.reply(events.MessageSent{
		ID: msg.ID, SenderID: sender, ReceiverID: receiverID, Content: msg.Content, SentAt: msg.CreatedAt,
	})
	e.reg.Deliver(receiverID, events.NewMessage{
		ID: msg.ID, SenderID: sender, ReceiverID: receiverID, Content: msg.Content, SentAt: msg.CreatedAt,
	})
	e.notifier.Deliver(notif)

	e.log.Debug("message sent", "id", msg.ID, "sender", sender, "receiver", receiverID)
	return msg, nil
}

// TypingStart forwards an ephemeral typing signal if receiver is reachable.
func (e *Engine) TypingStart(sess Session, receiverID uint64) bool {
	if receiverID == sess.UserID {
		return false
	}
	return e.reg.Deliver(receiverID, events.UserTyping{UserID: sess.UserID})
}

// TypingStop forwards an ephemeral stopped-typing signal if receiver is reachable.
func (e *Engine) TypingStop(sess Session, receiverID uint64) bool {
	if receiverID == sess.UserID {
		return false
	}
	return e.reg.Deliver(receiverID, events.UserStoppedTyping{UserID: sess.UserID})
}

// MarkRead marks every unread message senderID sent to the session user as
// read. The sender hears about it only when something actually changed.
// Returns how many messages changed.
func (e *Engine) MarkRead(ctx context.Context, sess Session, senderID uint64) (int64, error) {
	reader := sess.UserID
	if senderID == reader {
		return 0, svcErr.Validation("cannot mark your own messages")
	}

	changed, err := e.msgs.MarkRead(storeCtx(ctx), reader, senderID)
	if err != nil {
		return 0, e.fail(ctx, string(events.ActionMarkMessagesRead), reader, senderID, err)
	}
	if changed > 0 {
		e.reg.Deliver(senderID, events.MessagesRead{ReaderID: reader})
	}
	return changed, nil
}

// Conversation returns up to limit of the latest messages between the reader
// and counterpart, oldest first. History stays readable after an unmatch but
// not across a block.
func (e *Engine) Conversation(ctx context.Context, reader, counterpart uint64, limit int) ([]db.Message, error) {
	if counterpart == 0 || counterpart == reader {
		return nil, svcErr.Validation("invalid conversation counterpart")
	}
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}

	store := storeCtx(ctx)
	blocked, err := e.gate.IsBlocked(store, reader, counterpart)
	if err != nil {
		return nil, e.fail(ctx, "conversation", reader, counterpart, err)
	}
	if blocked {
		return nil, svcErr.Forbidden("you cannot view this conversation")
	}

	msgs, err := e.msgs.Conversation(store, reader, counterpart, limit)
	if err != nil {
		return nil, e.fail(ctx, "conversation", reader, counterpart, err)
	}
	return msgs, nil
}
