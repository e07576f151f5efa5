package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-social/internal/db"
)

// Pair is an unordered pair of identities, normalised so that A < B.
type Pair struct {
	A uint64
	B uint64
}

// NewPair orders the two ids.
func NewPair(x, y uint64) Pair {
	if x > y {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// RelationshipRepository provides data access for likes, blocks, unlikes and visits.
// It is the only place that knows how the relationship tables are shaped.
type RelationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new repository bound to the given DB connection.
func NewRelationshipRepository(database *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx.
func (r *RelationshipRepository) WithTx(tx *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: tx}
}

// Like inserts the edge liker -> liked.
//
// Behavior:
//   - A duplicate insert is a no-op, not an error.
//   - created reports whether a new row was written.
//
// Example:
//
//	repo.Like(ctx, 1, 2) // user 1 liked user 2
func (r *RelationshipRepository) Like(ctx context.Context, likerID, likedID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Like{LikerID: likerID, LikedID: likedID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasLiked checks whether liker currently likes liked.
func (r *RelationshipRepository) HasLiked(ctx context.Context, likerID, likedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Count(&count).Error
	return count > 0, err
}

// IsMutual reports whether both directed likes between a and b exist right now.
// Matches are always derived here and never stored.
func (r *RelationshipRepository) IsMutual(ctx context.Context, a, b uint64) (bool, error) {
	if a == b {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("(liker_id = ? AND liked_id = ?) OR (liker_id = ? AND liked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count == 2, err
}

// DeleteLike removes liker -> liked and reports whether a row was removed.
func (r *RelationshipRepository) DeleteLike(ctx context.Context, likerID, likedID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Delete(&db.Like{})
	return res.RowsAffected > 0, res.Error
}

// RecordUnlike remembers that unliker removed a like on unliked. Idempotent.
func (r *RelationshipRepository) RecordUnlike(ctx context.Context, unlikerID, unlikedID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Unlike{UnlikerID: unlikerID, UnlikedID: unlikedID}).Error
}

// Block inserts blocker -> blocked. Idempotent.
func (r *RelationshipRepository) Block(ctx context.Context, blockerID, blockedID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Block{BlockerID: blockerID, BlockedID: blockedID}).Error
}

// IsBlocked reports whether a block exists in either direction between a and b.
func (r *RelationshipRepository) IsBlocked(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// SeverLikes deletes the likes between a and b in both directions.
func (r *RelationshipRepository) SeverLikes(ctx context.Context, a, b uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(liker_id = ? AND liked_id = ?) OR (liker_id = ? AND liked_id = ?)", a, b, b, a).
		Delete(&db.Like{})
	return res.RowsAffected, res.Error
}

// RecordVisit appends a profile view.
func (r *RelationshipRepository) RecordVisit(ctx context.Context, visitorID, visitedID uint64) error {
	return r.db.WithContext(ctx).
		Create(&db.Visit{VisitorID: visitorID, VisitedID: visitedID}).Error
}

// MatchedWith returns every identity currently holding a mutual like with id.
func (r *RelationshipRepository) MatchedWith(ctx context.Context, id uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Table("likes l1").
		Joins("JOIN likes l2 ON l2.liker_id = l1.liked_id AND l2.liked_id = l1.liker_id").
		Where("l1.liker_id = ?", id).
		Order("l1.liked_id").
		Pluck("l1.liked_id", &ids).Error
	return ids, err
}

// CountLikers returns how many distinct users currently like id.
func (r *RelationshipRepository) CountLikers(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).Where("liked_id = ?", id).Count(&count).Error
	return count, err
}

// CountVisits returns the total number of visits id received.
func (r *RelationshipRepository) CountVisits(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Visit{}).Where("visited_id = ?", id).Count(&count).Error
	return count, err
}

// CountUnlikers returns how many distinct users ever unliked id after liking.
func (r *RelationshipRepository) CountUnlikers(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Unlike{}).Where("unliked_id = ?", id).Count(&count).Error
	return count, err
}

// unnotifiedMatchSQL selects mutual pairs (liker < liked) lacking a match
// notification recorded after both likes were in place.
const unnotifiedMatchSQL = `
	SELECT l1.liker_id AS a, l1.liked_id AS b
	FROM likes l1
	JOIN likes l2 ON l2.liker_id = l1.liked_id AND l2.liked_id = l1.liker_id
	WHERE l1.liker_id < l1.liked_id
	  AND NOT EXISTS (
		SELECT 1 FROM notifications n
		WHERE n.type = ?
		  AND ((n.recipient_id = l1.liker_id AND n.originator_id = l1.liked_id)
		    OR (n.recipient_id = l1.liked_id AND n.originator_id = l1.liker_id))
		  AND n.created_at >= l1.created_at
		  AND n.created_at >= l2.created_at
	  )`

// UnnotifiedMatches lists up to limit mutual pairs whose match was never notified.
func (r *RelationshipRepository) UnnotifiedMatches(ctx context.Context, limit int) ([]Pair, error) {
	var pairs []Pair
	err := r.db.WithContext(ctx).
		Raw(unnotifiedMatchSQL+" ORDER BY l1.liker_id, l1.liked_id LIMIT ?", db.NotificationMatch, limit).
		Scan(&pairs).Error
	return pairs, err
}

// HasUnnotifiedMatch reports whether p is mutual and its match was never notified.
func (r *RelationshipRepository) HasUnnotifiedMatch(ctx context.Context, p Pair) (bool, error) {
	var pairs []Pair
	err := r.db.WithContext(ctx).
		Raw(unnotifiedMatchSQL+" AND l1.liker_id = ? AND l1.liked_id = ?", db.NotificationMatch, p.A, p.B).
		Scan(&pairs).Error
	return len(pairs) > 0, err
}
