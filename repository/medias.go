package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/models"
)

type MediaRepo struct {
	db *gorm.DB
}

func (r *MediaRepo) Get(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, err)
	}
	return &media, nil
}

// Add records a blob path that the blob store already holds.
func (r *MediaRepo) Add(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return fmt.Errorf("add media: %w", err)
	}
	return nil
}

type TweetMediaRepo struct {
	db *gorm.DB
}

// AddMany links every media id to the tweet in one transaction. If any id
// does not reference an existing media row nothing is linked and
// OutcomeNotFound is returned.
func (r *TweetMediaRepo) AddMany(ctx context.Context, tweetID uint, mediaIDs []uint) (Outcome, error) {
	if len(mediaIDs) == 0 {
		return OutcomeApplied, nil
	}

	links := make([]models.TweetMedia, len(mediaIDs))
	for i, id := range mediaIDs {
		links[i] = models.TweetMedia{TweetID: tweetID, MediaID: id}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&links).Error
	})
	return outcomeOf(err)
}
