package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/models"
)

type TweetRepo struct {
	db *gorm.DB
}

// Get loads the tweet with its author.
func (r *TweetRepo) Get(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	err := r.db.WithContext(ctx).
		Joins("Author").
		Where("tweets.id = ?", id).
		Take(&tweet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tweet %d: %w", id, err)
	}
	return &tweet, nil
}

// Add inserts the tweet. An author that does not exist yields OutcomeNotFound.
func (r *TweetRepo) Add(ctx context.Context, tweet *models.Tweet) (Outcome, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(tweet).Error
	return outcomeOf(err)
}

// Delete removes the tweet; its media links and likes go with it.
func (r *TweetRepo) Delete(ctx context.Context, tweet *models.Tweet) (Outcome, error) {
	res := r.db.WithContext(ctx).Delete(&models.Tweet{}, tweet.ID)
	if res.Error != nil {
		return outcomeOf(res.Error)
	}
	if res.RowsAffected == 0 {
		return OutcomeNotFound, nil
	}
	return OutcomeApplied, nil
}
