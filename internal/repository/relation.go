package repository

import (
	"context"

	"photogram/internal/cache"
	"photogram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationRepository stores the directed follow graph in user_relations.
type RelationRepository interface {
	// Add records from -> to. It reports false when the edge already existed.
	Add(ctx context.Context, fromUserID, toUserID uint) (bool, error)
	// Remove deletes from -> to. It reports false when there was no edge.
	Remove(ctx context.Context, fromUserID, toUserID uint) (bool, error)
	Exists(ctx context.Context, fromUserID, toUserID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint) ([]models.User, error)
	ListFollowers(ctx context.Context, userID uint) ([]models.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	Stats(ctx context.Context, userID uint) (*models.FollowStats, error)
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository returns a RelationRepository backed by db.
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) Add(ctx context.Context, fromUserID, toUserID uint) (bool, error) {
	rel := models.Relation{FromUserID: fromUserID, ToUserID: toUserID}
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rel)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidateFollow(ctx, fromUserID, toUserID)
	}
	return result.RowsAffected > 0, nil
}

func (r *relationRepository) Remove(ctx context.Context, fromUserID, toUserID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Delete(&models.Relation{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidateFollow(ctx, fromUserID, toUserID)
	}
	return result.RowsAffected > 0, nil
}

func (r *relationRepository) Exists(ctx context.Context, fromUserID, toUserID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Relation{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *relationRepository) ListFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN user_relations ur ON ur.to_user_id = users.id").
		Where("ur.from_user_id = ?", userID).
		Order("ur.created_at DESC, users.id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationRepository) ListFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN user_relations ur ON ur.from_user_id = users.id").
		Where("ur.to_user_id = ?", userID).
		Order("ur.created_at DESC, users.id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Relation{}).
		Where("from_user_id = ?", userID).
		Pluck("to_user_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *relationRepository) Stats(ctx context.Context, userID uint) (*models.FollowStats, error) {
	stats := models.FollowStats{UserID: userID}
	err := cache.Aside(ctx, cache.FollowStatsKey(userID), &stats, cache.FollowStatsTTL, func() error {
		db := readDB(r.db).WithContext(ctx)
		if err := db.Model(&models.Relation{}).Where("from_user_id = ?", userID).Count(&stats.FollowingCount).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := db.Model(&models.Relation{}).Where("to_user_id = ?", userID).Count(&stats.FollowersCount).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
