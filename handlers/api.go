package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microtwit/metrics"
	"microtwit/middleware"
	"microtwit/models"
	"microtwit/repository"
	"microtwit/storage"
)

// APIKeyHeader carries the caller's credential.
const APIKeyHeader = "api-key"

const (
	USER_NOT_FOUND  = "User not found"
	TWEET_NOT_FOUND = "Tweet not found"
	INTERNAL_ERROR  = "Internal server error"
)

type API struct {
	store     *repository.Store
	blobs     storage.BlobStore
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	maxUpload int64
}

func NewAPI(store *repository.Store, blobs storage.BlobStore, m *metrics.Metrics, logger *logrus.Logger, maxUpload int64) *API {
	return &API{
		store:     store,
		blobs:     blobs,
		metrics:   m,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// authenticate resolves the api-key header to a user. When it returns false
// the 401 has already been written.
func (api *API) authenticate(w http.ResponseWriter, r *http.Request, path string) (*models.User, bool) {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		api.fail(w, path, http.StatusUnauthorized, models.ErrorAuthentication, "Missing api-key header")
		return nil, false
	}

	user, err := api.store.Users.GetByAPIKey(r.Context(), key)
	if errors.Is(err, repository.ErrNotFound) {
		api.logger.WithField("path", r.URL.Path).Warn("Request with unknown api key")
		api.fail(w, path, http.StatusUnauthorized, models.ErrorAuthentication, "Unknown api key")
		return nil, false
	}
	if err != nil {
		api.internalError(w, r, path, err, "Failed to look up api key")
		return nil, false
	}
	return user, true
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (api *API) succeed(w http.ResponseWriter, path string, status int, body interface{}) {
	api.metrics.SuccessfulRequests.WithLabelValues(path).Inc()
	middleware.JSONResponse(w, status, body)
}

func (api *API) fail(w http.ResponseWriter, path string, status int, kind, message string) {
	api.metrics.BadRequests.WithLabelValues(path).Inc()
	middleware.ErrorResponse(w, status, kind, message)
}

// internalError logs the cause and answers 500 without exposing it.
func (api *API) internalError(w http.ResponseWriter, r *http.Request, path string, err error, msg string) {
	api.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error(msg)
	api.fail(w, path, http.StatusInternalServerError, models.ErrorInternal, INTERNAL_ERROR)
}

func (api *API) GETHealthHandler(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ResultResponse{Result: true})
}
