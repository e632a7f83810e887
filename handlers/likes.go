package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"microtwit/models"
	"microtwit/repository"
)

// likeTarget authenticates the caller and loads the tweet named in the path.
func (api *API) likeTarget(w http.ResponseWriter, r *http.Request, path string) (*models.User, *models.Tweet, bool) {
	user, ok := api.authenticate(w, r, path)
	if !ok {
		return nil, nil, false
	}

	tweetID, ok := pathID(r)
	if !ok {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, TWEET_NOT_FOUND)
		return nil, nil, false
	}

	tweet, err := api.store.Tweets.Get(r.Context(), tweetID)
	if errors.Is(err, repository.ErrNotFound) {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, TWEET_NOT_FOUND)
		return nil, nil, false
	}
	if err != nil {
		api.internalError(w, r, path, err, "Failed to load tweet")
		return nil, nil, false
	}
	return user, tweet, true
}

func (api *API) POSTLikeHandler(w http.ResponseWriter, r *http.Request) {
	const path = "post_like"

	user, tweet, ok := api.likeTarget(w, r, path)
	if !ok {
		return
	}
	ctx := r.Context()

	_, err := api.store.Likes.Get(ctx, tweet.ID, user.ID)
	if err == nil {
		api.fail(w, path, http.StatusForbidden, models.ErrorConflict, "Tweet already liked")
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		api.internalError(w, r, path, err, "Failed to look up like")
		return
	}

	outcome, err := api.store.Likes.Add(ctx, &models.Like{TweetID: tweet.ID, UserID: user.ID})
	if err != nil {
		api.internalError(w, r, path, err, "Failed to insert like")
		return
	}
	switch outcome {
	case repository.OutcomeConflict:
		api.fail(w, path, http.StatusForbidden, models.ErrorConflict, "Tweet already liked")
		return
	case repository.OutcomeNotFound:
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, TWEET_NOT_FOUND)
		return
	}

	api.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"tweet_id": tweet.ID,
	}).Info("Tweet liked")

	api.metrics.LikesSet.WithLabelValues("like").Inc()
	api.succeed(w, path, http.StatusCreated, models.ResultResponse{Result: true})
}

func (api *API) DELETELikeHandler(w http.ResponseWriter, r *http.Request) {
	const path = "delete_like"

	user, tweet, ok := api.likeTarget(w, r, path)
	if !ok {
		return
	}
	ctx := r.Context()

	like, err := api.store.Likes.Get(ctx, tweet.ID, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		api.fail(w, path, http.StatusForbidden, models.ErrorConflict, "Tweet is not liked")
		return
	}
	if err != nil {
		api.internalError(w, r, path, err, "Failed to look up like")
		return
	}

	outcome, err := api.store.Likes.Delete(ctx, like)
	if err != nil {
		api.internalError(w, r, path, err, "Failed to delete like")
		return
	}
	if outcome != repository.OutcomeApplied {
		api.fail(w, path, http.StatusForbidden, models.ErrorConflict, "Tweet is not liked")
		return
	}

	api.metrics.LikesRemoved.WithLabelValues("unlike").Inc()
	api.succeed(w, path, http.StatusOK, models.ResultResponse{Result: true})
}
