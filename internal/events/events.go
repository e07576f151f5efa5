// Package events defines the live wire vocabulary exchanged with connections.
//
// Outbound events form a closed set: Event can only be implemented inside this
// package, and every variant renders as one flat JSON object tagged by "type".
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindNewMessage        Kind = "new_message"
	KindMessageSent       Kind = "message_sent"
	KindNewNotification   Kind = "new_notification"
	KindUserTyping        Kind = "user_typing"
	KindUserStoppedTyping Kind = "user_stopped_typing"
	KindUserOnline        Kind = "user_online"
	KindUserOffline       Kind = "user_offline"
	KindMessagesRead      Kind = "messages_read"
	KindError             Kind = "error"
)

// Event is one outbound live event.
type Event interface {
	Kind() Kind
	sealed()
}

// NewMessage is delivered to the receiver of a message.
type NewMessage struct {
	ID         uint64    `json:"id"`
	SenderID   uint64    `json:"sender_id"`
	ReceiverID uint64    `json:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

// MessageSent confirms a persisted message to its sender.
type MessageSent struct {
	ID         uint64    `json:"id"`
	SenderID   uint64    `json:"sender_id"`
	ReceiverID uint64    `json:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

// NewNotification mirrors a persisted notification row.
type NewNotification struct {
	ID               uint64    `json:"id"`
	NotificationType string    `json:"notification_type"`
	OriginatorID     uint64    `json:"originator_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type UserTyping struct {
	UserID uint64 `json:"user_id"`
}

type UserStoppedTyping struct {
	UserID uint64 `json:"user_id"`
}

type UserOnline struct {
	UserID uint64 `json:"user_id"`
}

type UserOffline struct {
	UserID   uint64    `json:"user_id"`
	LastSeen time.Time `json:"last_seen"`
}

// MessagesRead tells a sender that ReaderID has read their messages.
type MessagesRead struct {
	ReaderID uint64 `json:"reader_id"`
}

// Error is reported to the acting connection only.
type Error struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
}

func (NewMessage) Kind() Kind        { return KindNewMessage }
func (MessageSent) Kind() Kind       { return KindMessageSent }
func (NewNotification) Kind() Kind   { return KindNewNotification }
func (UserTyping) Kind() Kind        { return KindUserTyping }
func (UserStoppedTyping) Kind() Kind { return KindUserStoppedTyping }
func (UserOnline) Kind() Kind        { return KindUserOnline }
func (UserOffline) Kind() Kind       { return KindUserOffline }
func (MessagesRead) Kind() Kind      { return KindMessagesRead }
func (Error) Kind() Kind             { return KindError }

func (NewMessage) sealed()        {}
func (MessageSent) sealed()       {}
func (NewNotification) sealed()   {}
func (UserTyping) sealed()        {}
func (UserStoppedTyping) sealed() {}
func (UserOnline) sealed()        {}
func (UserOffline) sealed()       {}
func (MessagesRead) sealed()      {}
func (Error) sealed()             {}

// Encode renders ev as a flat JSON object with a leading "type" field.
func Encode(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("encode: nil event")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Kind(), err)
	}
	head, _ := json.Marshal(struct {
		Type Kind `json:"type"`
	}{ev.Kind()})

	// splice {"type":"x"} and {"a":1} into {"type":"x","a":1}
	if len(body) <= 2 {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}
