package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"microtwit/models"
	"microtwit/repository"
)

func (api *API) GETMeHandler(w http.ResponseWriter, r *http.Request) {
	const path = "get_me"

	user, ok := api.authenticate(w, r, path)
	if !ok {
		return
	}
	api.succeed(w, path, http.StatusOK, models.UserResponse{Result: true, User: user.Profile()})
}

func (api *API) GETUserHandler(w http.ResponseWriter, r *http.Request) {
	const path = "get_user"

	userID, ok := pathID(r)
	if !ok {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, USER_NOT_FOUND)
		return
	}

	user, err := api.store.Users.GetByID(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, USER_NOT_FOUND)
		return
	}
	if err != nil {
		api.internalError(w, r, path, err, "Failed to load user")
		return
	}

	api.succeed(w, path, http.StatusOK, models.UserResponse{Result: true, User: user.Profile()})
}

func (api *API) POSTFollowHandler(w http.ResponseWriter, r *http.Request) {
	const path = "post_follow"

	user, ok := api.authenticate(w, r, path)
	if !ok {
		return
	}

	targetID, ok := pathID(r)
	if !ok {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, USER_NOT_FOUND)
		return
	}

	outcome, err := api.store.Follows.Add(r.Context(), &models.Follow{FollowerID: user.ID, FollowingID: targetID})
	if err != nil {
		api.internalError(w, r, path, err, "Failed to insert follow relationship")
		return
	}
	if outcome != repository.OutcomeApplied {
		// Duplicate edges and unknown targets are reported alike.
		api.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"target":  targetID,
			"outcome": outcome.String(),
		}).Warn("Follow not created")
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, "User not found or already followed")
		return
	}

	api.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"target":  targetID,
	}).Info("User followed successfully")

	api.metrics.FollowRequests.WithLabelValues("follow").Inc()
	api.succeed(w, path, http.StatusCreated, models.ResultResponse{Result: true})
}

func (api *API) DELETEFollowHandler(w http.ResponseWriter, r *http.Request) {
	const path = "delete_follow"

	user, ok := api.authenticate(w, r, path)
	if !ok {
		return
	}

	targetID, ok := pathID(r)
	if !ok {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, "Not following this user")
		return
	}

	ctx := r.Context()
	edge, err := api.store.Follows.Get(ctx, user.ID, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, "Not following this user")
		return
	}
	if err != nil {
		api.internalError(w, r, path, err, "Failed to look up follow relationship")
		return
	}

	outcome, err := api.store.Follows.Delete(ctx, edge)
	if err != nil {
		api.internalError(w, r, path, err, "Failed to delete follow relationship")
		return
	}
	if outcome != repository.OutcomeApplied {
		api.fail(w, path, http.StatusNotFound, models.ErrorNotFound, "Not following this user")
		return
	}

	api.metrics.UnfollowRequests.WithLabelValues("unfollow").Inc()
	api.succeed(w, path, http.StatusOK, models.ResultResponse{Result: true})
}
