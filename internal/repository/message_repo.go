package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
)

// MessageRepository stores direct messages between matched users.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// Create appends m and fills in its ID and CreatedAt.
func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// MarkRead flips every unread message sender -> reader to read.
// Returns how many rows actually changed, so a repeat call returns 0.
func (r *MessageRepository) MarkRead(ctx context.Context, readerID, senderID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// Conversation returns the latest limit messages exchanged between a and b,
// oldest first.
func (r *MessageRepository) Conversation(ctx context.Context, a, b uint64, limit int) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	// query is newest-first; flip so callers render in send order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
