package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/models"
)

type UserRepo struct {
	db *gorm.DB
}

// UserQuery selects a user by exactly one of its API key or id.
type UserQuery struct {
	APIKey string
	ID     uint
}

// Get loads a user together with both directions of its follow edges.
func (r *UserRepo) Get(ctx context.Context, q UserQuery) (*models.User, error) {
	if (q.APIKey == "") == (q.ID == 0) {
		return nil, ErrInvalidSelector
	}

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.User{})
		if q.APIKey != "" {
			query = query.Where("api_key = ?", q.APIKey)
		} else {
			query = query.Where("id = ?", q.ID)
		}
		if err := query.Take(&user).Error; err != nil {
			return err
		}
		return loadEdges(tx, &user)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	return r.Get(ctx, UserQuery{APIKey: apiKey})
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.Get(ctx, UserQuery{ID: id})
}

type edgeRow struct {
	FollowerID  uint
	FollowingID uint
	UserID      uint
	UserName    string
}

// loadEdges reads users_follow once, joining whichever end of each edge is
// not the loaded user.
func loadEdges(tx *gorm.DB, user *models.User) error {
	var rows []edgeRow
	err := tx.Table("users_follow AS f").
		Select("f.follower_id, f.following_id, u.id AS user_id, u.name AS user_name").
		Joins("JOIN users u ON u.id = CASE WHEN f.follower_id = ? THEN f.following_id ELSE f.follower_id END", user.ID).
		Where("f.follower_id = ? OR f.following_id = ?", user.ID, user.ID).
		Order("f.id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	user.Followers = []models.UserRef{}
	user.Following = []models.UserRef{}
	for _, row := range rows {
		ref := models.UserRef{ID: row.UserID, Name: row.UserName}
		if row.FollowerID == user.ID {
			user.Following = append(user.Following, ref)
		}
		if row.FollowingID == user.ID {
			user.Followers = append(user.Followers, ref)
		}
	}
	return nil
}

type attachmentRow struct {
	TweetID   uint
	MediaPath string
}

type likerRow struct {
	TweetID  uint
	UserID   uint
	UserName string
}

// Feed returns the tweets authored by the user or by anyone the user
// follows, newest first, with authors, attachments and likers resolved.
func (r *UserRepo) Feed(ctx context.Context, user *models.User) ([]models.Tweet, error) {
	var tweets []models.Tweet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		followed := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).
			Select("following_id").
			Where("follower_id = ?", user.ID)

		err := tx.Joins("Author").
			Where("tweets.author_id = ? OR tweets.author_id IN (?)", user.ID, followed).
			Order("tweets.id DESC").
			Find(&tweets).Error
		if err != nil {
			return err
		}
		if len(tweets) == 0 {
			return nil
		}

		ids := make([]uint, len(tweets))
		byID := make(map[uint]*models.Tweet, len(tweets))
		for i := range tweets {
			ids[i] = tweets[i].ID
			tweets[i].Attachments = []string{}
			tweets[i].Likes = []models.UserRef{}
			byID[tweets[i].ID] = &tweets[i]
		}

		var attachments []attachmentRow
		err = tx.Table("tweet_medias").
			Select("tweet_medias.tweet_id, medias.media_path").
			Joins("JOIN medias ON medias.id = tweet_medias.media_id").
			Where("tweet_medias.tweet_id IN ?", ids).
			Order("tweet_medias.id").
			Scan(&attachments).Error
		if err != nil {
			return err
		}
		for _, a := range attachments {
			if t, ok := byID[a.TweetID]; ok {
				t.Attachments = append(t.Attachments, a.MediaPath)
			}
		}

		var likers []likerRow
		err = tx.Table("tweet_likes").
			Select("tweet_likes.tweet_id, users.id AS user_id, users.name AS user_name").
			Joins("JOIN users ON users.id = tweet_likes.user_id").
			Where("tweet_likes.tweet_id IN ?", ids).
			Order("tweet_likes.id").
			Scan(&likers).Error
		if err != nil {
			return err
		}
		for _, l := range likers {
			if t, ok := byID[l.TweetID]; ok {
				t.Likes = append(t.Likes, models.UserRef{ID: l.UserID, Name: l.UserName})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get feed for user %d: %w", user.ID, err)
	}
	return tweets, nil
}

// Add inserts the user and sets its id. A duplicate API key is reported as
// OutcomeConflict.
func (r *UserRepo) Add(ctx context.Context, user *models.User) (Outcome, error) {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	return outcomeOf(err)
}

// Delete removes the user; the store cascades to its edges, tweets and likes.
func (r *UserRepo) Delete(ctx context.Context, user *models.User) (Outcome, error) {
	res := r.db.WithContext(ctx).Delete(&models.User{}, user.ID)
	if res.Error != nil {
		return outcomeOf(res.Error)
	}
	if res.RowsAffected == 0 {
		return OutcomeNotFound, nil
	}
	return OutcomeApplied, nil
}
