package models

// User owns tweets and follow edges. APIKey is the only credential.
type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:50" json:"name"`
	APIKey string `gorm:"column:api_key;size:50;uniqueIndex" json:"-"`

	// Resolved at read time from users_follow, never stored on the row.
	Followers []UserRef `gorm:"-" json:"followers"`
	Following []UserRef `gorm:"-" json:"following"`
}

func (User) TableName() string {
	return "users"
}

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          uint `gorm:"primaryKey"`
	FollowerID  uint `gorm:"not null;uniqueIndex:idx_users_follow_pair"`
	FollowingID uint `gorm:"not null;uniqueIndex:idx_users_follow_pair;index"`
	Follower    User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following   User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "users_follow"
}

type Tweet struct {
	ID       uint   `gorm:"primaryKey"`
	Content  string `gorm:"type:text"`
	AuthorID uint   `gorm:"not null;index"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`

	// Filled by feed assembly.
	Attachments []string  `gorm:"-"`
	Likes       []UserRef `gorm:"-"`
}

func (Tweet) TableName() string {
	return "tweets"
}

// Media points at a blob that was already written to the blob store.
type Media struct {
	ID        uint   `gorm:"primaryKey"`
	MediaPath string `gorm:"not null"`
}

func (Media) TableName() string {
	return "medias"
}

type TweetMedia struct {
	ID      uint  `gorm:"primaryKey"`
	TweetID uint  `gorm:"not null;index"`
	MediaID uint  `gorm:"not null;index"`
	Tweet   Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE"`
	Media   Media `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE"`
}

func (TweetMedia) TableName() string {
	return "tweet_medias"
}

type Like struct {
	ID      uint  `gorm:"primaryKey"`
	TweetID uint  `gorm:"not null;uniqueIndex:idx_tweet_likes_pair"`
	UserID  uint  `gorm:"not null;uniqueIndex:idx_tweet_likes_pair;index"`
	Tweet   Tweet `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE"`
	User    User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Like) TableName() string {
	return "tweet_likes"
}

// All lists every persisted model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tweet{},
		&Media{},
		&TweetMedia{},
		&Like{},
	}
}
