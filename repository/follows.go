package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/models"
)

type FollowRepo struct {
	db *gorm.DB
}

func (r *FollowRepo) Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var edge models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Take(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get follow %d->%d: %w", followerID, followingID, err)
	}
	return &edge, nil
}

// Add inserts the edge. A duplicate edge yields OutcomeConflict and a missing
// user on either end yields OutcomeNotFound.
func (r *FollowRepo) Add(ctx context.Context, edge *models.Follow) (Outcome, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(edge).Error
	return outcomeOf(err)
}

func (r *FollowRepo) Delete(ctx context.Context, edge *models.Follow) (Outcome, error) {
	res := r.db.WithContext(ctx).Delete(&models.Follow{}, edge.ID)
	if res.Error != nil {
		return outcomeOf(res.Error)
	}
	if res.RowsAffected == 0 {
		return OutcomeNotFound, nil
	}
	return OutcomeApplied, nil
}
