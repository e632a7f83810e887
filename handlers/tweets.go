package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"microtwit/models"
	"microtwit/repository"
)

func (api *API) POSTTweetHandler(w http.ResponseWriter, r *http.Request) {
	const path = "post_tweet"

	user, ok := api.authenticate(w, r, path)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload)
	defer r.Body.Close()

	var req models.CreateTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.fail(w, path, http.StatusBadRequest, models.ErrorValidation, "Invalid JSON body")
		return
	}
	if req.TweetData == nil {
		api.fail(w, path, http.StatusBadRequest, models.ErrorValidation, "tweet_data is required")
		return
	}

	mediaIDs := make([]uint, 0, len(req.TweetMediaIDs))
	for _, id := range req.TweetMediaIDs {
		if id <= 0 {
			api.fail(w, path, http.StatusBadRequest, models.ErrorValidation, "Invalid media id")
			return
		}
		mediaIDs = append(mediaIDs, uint(id))
	}

	ctx := r.Context()
	tweet := &models.Tweet{Content: *req.TweetData, AuthorID: user.ID}

	outcome, err := api.store.Tweets.Add(ctx, tweet)
	if err != nil {
		api.internalError(w, r, path, err, "Failed to insert tweet")
		return
	}
	if outcome != repository.OutcomeApplied {
		// The author was removed after authenticating.
		api.fail(w, path, http.StatusUnauthorized, models.ErrorAuthentication, "Unknown api key")
		return
	}

	outcome, err = api.store.TweetMedias.AddMany(ctx, tweet.ID, mediaIDs)
	if err != nil || outcome != repository.OutcomeApplied {
		if _, delErr := api.store.Tweets.Delete(ctx, tweet); delErr != nil {
			api.logger.WithError(delErr).WithField("tweet_id", tweet.ID).Error("Failed to remove tweet after media attach failed")
		}
		if err != nil {
			api.internalError(w, r, path, err, "Failed to attach media")
			return
		}
		api.logger.WithFields(logrus.Fields{
			"user_id":   user.ID,
			"media_ids": mediaIDs,
		}).Warn("Tweet rejected for invalid media ids")
		api.fail(w, path, http.StatusBadRequest, models.ErrorValidation, "Invalid media id")
		return
	}

	api.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"tweet_id": tweet.ID,
	}).Info("Tweet posted")

	api.metrics.TweetsPosted.WithLabelValues("tweet").Inc()
	api.succeed(w, path, http.StatusCreated, models.CreateTweetResponse{Result: true, TweetID: tweet.ID})
}

func (api *API) DELETETweetHandler(w http.ResponseWriter, r *http.Request) {
	const path = "delete_tweet"

	user, ok := api.authenticate(w, r, path)
	if !ok {
		return
	}

	tweetID, ok := pathID(r)
	if !ok {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, TWEET_NOT_FOUND)
		return
	}

	ctx := r.Context()
	tweet, err := api.store.Tweets.Get(ctx, tweetID)
	if errors.Is(err, repository.ErrNotFound) {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, TWEET_NOT_FOUND)
		return
	}
	if err != nil {
		api.internalError(w, r, path, err, "Failed to load tweet")
		return
	}

	if tweet.AuthorID != user.ID {
		api.logger.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"tweet_id": tweet.ID,
		}).Warn("User tried to delete a tweet they do not own")
		api.fail(w, path, http.StatusForbidden, models.ErrorPermission, "Only the author can delete a tweet")
		return
	}

	outcome, err := api.store.Tweets.Delete(ctx, tweet)
	if err != nil {
		api.internalError(w, r, path, err, "Failed to delete tweet")
		return
	}
	if outcome != repository.OutcomeApplied {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, TWEET_NOT_FOUND)
		return
	}

	api.metrics.TweetsDeleted.WithLabelValues("tweet").Inc()
	api.succeed(w, path, http.StatusOK, models.ResultResponse{Result: true})
}

func (api *API) GETFeedHandler(w http.ResponseWriter, r *http.Request) {
	const path = "get_feed"

	user, ok := api.authenticate(w, r, path)
	if !ok {
		return
	}

	tweets, err := api.store.Users.Feed(r.Context(), user)
	if err != nil {
		api.internalError(w, r, path, err, "Failed to assemble feed")
		return
	}

	views := make([]models.TweetView, 0, len(tweets))
	for _, t := range tweets {
		views = append(views, t.View())
	}

	api.succeed(w, path, http.StatusOK, models.FeedResponse{Result: true, Tweets: views})
}
