package db

import (
	"time"
)

// User table. Only the columns the coordinator reads or writes are modelled;
// profile attributes and tags live with the REST layer.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	Gender       string `gorm:"size:16;not null"`
	ProfileImage string `gorm:"size:255"`
	// Reputation is a materialized cache of the reputation formula.
	// Only the reputation updater writes it.
	Reputation int64 `gorm:"not null;default:0"`
	LastSeenAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Like is a directed edge liker -> liked.
//
// Composite PK: (LikerID, LikedID)
//   - One row per direction, so a repeated like is a no-op.
//
// A match is never stored: it exists exactly while both directions exist.
type Like struct {
	LikerID   uint64    `gorm:"primaryKey"`
	LikedID   uint64    `gorm:"primaryKey;index:idx_likes_liked"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Block is stored directed but checked in both directions.
type Block struct {
	BlockerID uint64    `gorm:"primaryKey"`
	BlockedID uint64    `gorm:"primaryKey;index:idx_blocks_blocked"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Unlike remembers that unliker once removed a like on unliked.
// Distinct per pair; it feeds the reputation penalty and is never deleted.
type Unlike struct {
	UnlikerID uint64    `gorm:"primaryKey"`
	UnlikedID uint64    `gorm:"primaryKey;index:idx_unlikes_unliked"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Visit is one profile view. Append-only; every row counts.
type Visit struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	VisitorID uint64    `gorm:"not null;index"`
	VisitedID uint64    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message is append-only; IsRead only ever moves false -> true.
//
// Indexes:
//   - idx_messages_pair(sender_id, receiver_id, is_read)
//     Serves both conversation reads and mark-as-read updates.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID   uint64    `gorm:"not null;index:idx_messages_pair,priority:1"`
	ReceiverID uint64    `gorm:"not null;index:idx_messages_pair,priority:2"`
	Content    string    `gorm:"type:text;not null"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_messages_pair,priority:3"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationUnlike  NotificationType = "unlike"
	NotificationMatch   NotificationType = "match"
	NotificationVisit   NotificationType = "visit"
	NotificationMessage NotificationType = "message"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationUnlike, NotificationMatch, NotificationVisit, NotificationMessage:
		return true
	}
	return false
}

// Notification is created as a side effect of an action, whether or not
// the recipient is online at the time.
type Notification struct {
	ID           uint64           `gorm:"primaryKey;autoIncrement"`
	RecipientID  uint64           `gorm:"not null;index:idx_notifications_recipient,priority:1"`
	Type         NotificationType `gorm:"size:16;not null"`
	OriginatorID uint64           `gorm:"not null"`
	IsRead       bool             `gorm:"not null;default:false"`
	CreatedAt    time.Time        `gorm:"autoCreateTime;index:idx_notifications_recipient,priority:2,sort:desc"`
}

// Models lists every table, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Like{},
		&Block{},
		&Unlike{},
		&Visit{},
		&Message{},
		&Notification{},
	}
}
