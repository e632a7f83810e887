package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microtwit/config"
	"microtwit/database"
	"microtwit/models"
)

// TestConfig returns a configuration pointing at a throwaway SQLite file and
// media directory inside the test's temp dir.
func TestConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(dir, "microtwit_test.db")
	cfg.MediaDir = filepath.Join(dir, "medias")
	cfg.MaxUploadBytes = 1 << 20
	return cfg
}

// TestLogger discards everything.
func TestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// SetupTestDB opens a fresh migrated database for the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(TestConfig(t), TestLogger())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateTestUser inserts a user with the given name and api key.
func CreateTestUser(t *testing.T, db *gorm.DB, name, apiKey string) *models.User {
	t.Helper()

	user := &models.User{Name: name, APIKey: apiKey}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestFollow makes follower follow following.
func CreateTestFollow(t *testing.T, db *gorm.DB, follower, following *models.User) *models.Follow {
	t.Helper()

	edge := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	if err := db.Omit(clause.Associations).Create(edge).Error; err != nil {
		t.Fatalf("Failed to create test follow: %v", err)
	}
	return edge
}

// CreateTestTweet inserts a tweet by author.
func CreateTestTweet(t *testing.T, db *gorm.DB, author *models.User, content string) *models.Tweet {
	t.Helper()

	tweet := &models.Tweet{AuthorID: author.ID, Content: content}
	if err := db.Omit(clause.Associations).Create(tweet).Error; err != nil {
		t.Fatalf("Failed to create test tweet: %v", err)
	}
	return tweet
}

// CreateTestMedia inserts a media row for an already stored path.
func CreateTestMedia(t *testing.T, db *gorm.DB, path string) *models.Media {
	t.Helper()

	media := &models.Media{MediaPath: path}
	if err := db.Create(media).Error; err != nil {
		t.Fatalf("Failed to create test media: %v", err)
	}
	return media
}

// CreateTestLike records a like of tweet by user.
func CreateTestLike(t *testing.T, db *gorm.DB, tweet *models.Tweet, user *models.User) *models.Like {
	t.Helper()

	like := &models.Like{TweetID: tweet.ID, UserID: user.ID}
	if err := db.Omit(clause.Associations).Create(like).Error; err != nil {
		t.Fatalf("Failed to create test like: %v", err)
	}
	return like
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// APIKey returns the header map authenticating as the given key.
func APIKey(key string) map[string]string {
	return map[string]string{"api-key": key}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorType checks for a failure body of the given kind.
func AssertErrorType(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()

	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Result {
		t.Errorf("Expected result false in error body")
	}
	if resp.ErrorType != expected {
		t.Errorf("Expected error_type %q, got %q (message %q)", expected, resp.ErrorType, resp.ErrorMessage)
	}
	if resp.ErrorMessage == "" {
		t.Errorf("Expected a non-empty error_message")
	}
}
