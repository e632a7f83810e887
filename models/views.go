package models

// UserRef is the id+name projection used in follower lists, likes and authors.
type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type UserProfile struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Followers []UserRef `json:"followers"`
	Following []UserRef `json:"following"`
}

type TweetView struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	Author      UserRef   `json:"author"`
	Attachments []string  `json:"attachments"`
	Likes       []UserRef `json:"likes"`
}

// Request types

type CreateTweetRequest struct {
	TweetData     *string `json:"tweet_data"`
	TweetMediaIDs []int64 `json:"tweet_media_ids"`
}

// Response types

type ResultResponse struct {
	Result bool `json:"result"`
}

type CreateTweetResponse struct {
	Result  bool `json:"result"`
	TweetID uint `json:"tweet_id"`
}

type UploadMediaResponse struct {
	Result  bool `json:"result"`
	MediaID uint `json:"media_id"`
}

type FeedResponse struct {
	Result bool        `json:"result"`
	Tweets []TweetView `json:"tweets"`
}

type UserResponse struct {
	Result bool        `json:"result"`
	User   UserProfile `json:"user"`
}

type ErrorResponse struct {
	Result       bool   `json:"result"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

// Error kinds reported in ErrorResponse.ErrorType.
const (
	ErrorAuthentication = "AuthenticationFailure"
	ErrorNotFound       = "NotFound"
	ErrorPermission     = "PermissionDenied"
	ErrorConflict       = "Conflict"
	ErrorValidation     = "ValidationFailure"
	ErrorInternal       = "InternalError"
)

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}

// Profile is the response-shaped projection of a loaded user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Followers: nonNilRefs(u.Followers),
		Following: nonNilRefs(u.Following),
	}
}

func (t Tweet) View() TweetView {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return TweetView{
		ID:          t.ID,
		Content:     t.Content,
		Author:      t.Author.Ref(),
		Attachments: attachments,
		Likes:       nonNilRefs(t.Likes),
	}
}

func nonNilRefs(refs []UserRef) []UserRef {
	if refs == nil {
		return []UserRef{}
	}
	return refs
}
