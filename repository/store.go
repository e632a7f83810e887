package repository

import "gorm.io/gorm"

// Store groups the per-entity data access objects. Every method runs in its
// own transaction and commits or rolls back before returning.
type Store struct {
	Users       *UserRepo
	Follows     *FollowRepo
	Tweets      *TweetRepo
	Medias      *MediaRepo
	TweetMedias *TweetMediaRepo
	Likes       *LikeRepo
}

func New(db *gorm.DB) *Store {
	return &Store{
		Users:       &UserRepo{db: db},
		Follows:     &FollowRepo{db: db},
		Tweets:      &TweetRepo{db: db},
		Medias:      &MediaRepo{db: db},
		TweetMedias: &TweetMediaRepo{db: db},
		Likes:       &LikeRepo{db: db},
	}
}
