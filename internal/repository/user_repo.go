package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/db"
)

// UserRepository covers the handful of account columns the coordinator touches.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Exists reports whether an account with id is present.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// HasProfileImage reports whether id has uploaded a profile picture.
// Unknown ids report false.
func (r *UserRepository) HasProfileImage(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND profile_image IS NOT NULL AND profile_image <> ''", id).
		Count(&count).Error
	return count > 0, err
}

// TouchLastSeen stamps the account's last seen time.
func (r *UserRepository) TouchLastSeen(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
}

// SetReputation overwrites the stored score.
func (r *UserRepository) SetReputation(ctx context.Context, id uint64, score int64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("reputation", score).Error
}

// Reputation reads the stored score. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *UserRepository) Reputation(ctx context.Context, id uint64) (int64, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Select("id", "reputation").First(&u, id).Error; err != nil {
		return 0, err
	}
	return u.Reputation, nil
}

// LastSeen reads when id was last connected or disconnected. Nil means never.
func (r *UserRepository) LastSeen(ctx context.Context, id uint64) (*time.Time, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Select("id", "last_seen_at").First(&u, id).Error; err != nil {
		return nil, err
	}
	return u.LastSeenAt, nil
}
