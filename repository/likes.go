package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/models"
)

type LikeRepo struct {
	db *gorm.DB
}

func (r *LikeRepo) Get(ctx context.Context, tweetID, userID uint) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Take(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get like tweet=%d user=%d: %w", tweetID, userID, err)
	}
	return &like, nil
}

// Add inserts the like. A concurrent duplicate loses at the unique index and
// comes back as OutcomeConflict; a vanished tweet or user as OutcomeNotFound.
func (r *LikeRepo) Add(ctx context.Context, like *models.Like) (Outcome, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error
	return outcomeOf(err)
}

func (r *LikeRepo) Delete(ctx context.Context, like *models.Like) (Outcome, error) {
	res := r.db.WithContext(ctx).Delete(&models.Like{}, like.ID)
	if res.Error != nil {
		return outcomeOf(res.Error)
	}
	if res.RowsAffected == 0 {
		return OutcomeNotFound, nil
	}
	return OutcomeApplied, nil
}
