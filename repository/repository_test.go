package repository_test

import (
	"context"
	"errors"
	"testing"

	"microtwit/models"
	"microtwit/repository"
	"microtwit/testutil"
)

func TestUserGetSelectors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, db, "alice", "key_alice")

	byKey, err := store.Users.GetByAPIKey(ctx, "key_alice")
	if err != nil {
		t.Fatalf("GetByAPIKey returned error: %v", err)
	}
	if byKey.ID != alice.ID || byKey.Name != "alice" {
		t.Errorf("GetByAPIKey = %+v, want alice", byKey)
	}

	byID, err := store.Users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if byID.APIKey != "key_alice" {
		t.Errorf("Expected api key to be loaded, got %q", byID.APIKey)
	}

	if _, err := store.Users.GetByAPIKey(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown key, got %v", err)
	}
	if _, err := store.Users.GetByID(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}

	for _, q := range []repository.UserQuery{{}, {APIKey: "key_alice", ID: alice.ID}} {
		if _, err := store.Users.Get(ctx, q); !errors.Is(err, repository.ErrInvalidSelector) {
			t.Errorf("Get(%+v): expected ErrInvalidSelector, got %v", q, err)
		}
	}
}

func TestUserFollowLists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, db, "a", "key_a")
	b := testutil.CreateTestUser(t, db, "b", "key_b")
	c := testutil.CreateTestUser(t, db, "c", "key_c")

	testutil.CreateTestFollow(t, db, a, b)
	testutil.CreateTestFollow(t, db, c, a)
	testutil.CreateTestFollow(t, db, a, a)

	got, err := store.Users.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	wantFollowing := []models.UserRef{{ID: b.ID, Name: "b"}, {ID: a.ID, Name: "a"}}
	wantFollowers := []models.UserRef{{ID: c.ID, Name: "c"}, {ID: a.ID, Name: "a"}}
	assertRefs(t, "following", got.Following, wantFollowing)
	assertRefs(t, "followers", got.Followers, wantFollowers)

	lonely, err := store.Users.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if lonely.Following == nil || len(lonely.Following) != 0 {
		t.Errorf("Expected empty non-nil following, got %#v", lonely.Following)
	}
	assertRefs(t, "followers of b", lonely.Followers, []models.UserRef{{ID: a.ID, Name: "a"}})
}

func TestFeed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, db, "a", "key_a")
	b := testutil.CreateTestUser(t, db, "b", "key_b")
	c := testutil.CreateTestUser(t, db, "c", "key_c")
	testutil.CreateTestFollow(t, db, a, b)

	t1 := testutil.CreateTestTweet(t, db, a, "first")
	t2 := testutil.CreateTestTweet(t, db, b, "second")
	testutil.CreateTestTweet(t, db, c, "hidden")
	t4 := testutil.CreateTestTweet(t, db, a, "third")

	m1 := testutil.CreateTestMedia(t, db, "/medias/one.png")
	m2 := testutil.CreateTestMedia(t, db, "/medias/two.png")
	if outcome, err := store.TweetMedias.AddMany(ctx, t2.ID, []uint{m2.ID, m1.ID}); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("AddMany = %v, %v", outcome, err)
	}
	testutil.CreateTestLike(t, db, t1, c)
	testutil.CreateTestLike(t, db, t1, b)

	feed, err := store.Users.Feed(ctx, a)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}

	wantIDs := []uint{t4.ID, t2.ID, t1.ID}
	if len(feed) != len(wantIDs) {
		t.Fatalf("Expected %d tweets, got %d", len(wantIDs), len(feed))
	}
	for i, id := range wantIDs {
		if feed[i].ID != id {
			t.Errorf("feed[%d].ID = %d, want %d", i, feed[i].ID, id)
		}
	}

	if feed[1].Author.Name != "b" {
		t.Errorf("Expected author b, got %q", feed[1].Author.Name)
	}
	if len(feed[1].Attachments) != 2 || feed[1].Attachments[0] != "/medias/two.png" {
		t.Errorf("Unexpected attachments %v", feed[1].Attachments)
	}
	assertRefs(t, "likes", feed[2].Likes, []models.UserRef{{ID: c.ID, Name: "c"}, {ID: b.ID, Name: "b"}})
	if feed[0].Attachments == nil || feed[0].Likes == nil {
		t.Errorf("Expected empty non-nil attachments and likes on %d", feed[0].ID)
	}

	// c follows nobody and only sees its own tweet.
	other, err := store.Users.Feed(ctx, c)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if len(other) != 1 || other[0].Content != "hidden" {
		t.Errorf("Unexpected feed for c: %+v", other)
	}
}

func TestFollowAddDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, db, "a", "key_a")
	b := testutil.CreateTestUser(t, db, "b", "key_b")

	edge := &models.Follow{FollowerID: a.ID, FollowingID: b.ID}
	if outcome, err := store.Follows.Add(ctx, edge); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("Add = %v, %v", outcome, err)
	}
	if edge.ID == 0 {
		t.Error("Expected edge id to be assigned")
	}

	dup := &models.Follow{FollowerID: a.ID, FollowingID: b.ID}
	if outcome, err := store.Follows.Add(ctx, dup); err != nil || outcome != repository.OutcomeConflict {
		t.Errorf("duplicate Add = %v, %v, want conflict", outcome, err)
	}

	dangling := &models.Follow{FollowerID: a.ID, FollowingID: 4242}
	if outcome, err := store.Follows.Add(ctx, dangling); err != nil || outcome != repository.OutcomeNotFound {
		t.Errorf("dangling Add = %v, %v, want not_found", outcome, err)
	}

	got, err := store.Follows.Get(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, err := store.Follows.Get(ctx, b.ID, a.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected reverse edge to be absent, got %v", err)
	}

	if outcome, err := store.Follows.Delete(ctx, got); err != nil || outcome != repository.OutcomeApplied {
		t.Errorf("Delete = %v, %v", outcome, err)
	}
	if outcome, err := store.Follows.Delete(ctx, got); err != nil || outcome != repository.OutcomeNotFound {
		t.Errorf("second Delete = %v, %v, want not_found", outcome, err)
	}
}

func TestTweetAddGetDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, db, "a", "key_a")
	b := testutil.CreateTestUser(t, db, "b", "key_b")

	tweet := &models.Tweet{AuthorID: a.ID, Content: "hello"}
	if outcome, err := store.Tweets.Add(ctx, tweet); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("Add = %v, %v", outcome, err)
	}

	got, err := store.Tweets.Get(ctx, tweet.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Author.Name != "a" || got.Content != "hello" {
		t.Errorf("Unexpected tweet %+v", got)
	}

	orphan := &models.Tweet{AuthorID: 777, Content: "nobody"}
	if outcome, err := store.Tweets.Add(ctx, orphan); err != nil || outcome != repository.OutcomeNotFound {
		t.Errorf("orphan Add = %v, %v, want not_found", outcome, err)
	}

	media := testutil.CreateTestMedia(t, db, "/medias/x.png")
	if _, err := store.TweetMedias.AddMany(ctx, tweet.ID, []uint{media.ID}); err != nil {
		t.Fatalf("AddMany returned error: %v", err)
	}
	testutil.CreateTestLike(t, db, got, b)

	if outcome, err := store.Tweets.Delete(ctx, got); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("Delete = %v, %v", outcome, err)
	}
	if _, err := store.Tweets.Get(ctx, tweet.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected deleted tweet to be gone, got %v", err)
	}

	var links, likes int64
	db.Model(&models.TweetMedia{}).Count(&links)
	db.Model(&models.Like{}).Count(&likes)
	if links != 0 || likes != 0 {
		t.Errorf("Expected cascade to remove links and likes, got %d links %d likes", links, likes)
	}

	// The media row itself outlives the tweet.
	if _, err := store.Medias.Get(ctx, media.ID); err != nil {
		t.Errorf("Expected media to survive, got %v", err)
	}
}

func TestTweetMediaAddManyRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, db, "a", "key_a")
	tweet := testutil.CreateTestTweet(t, db, a, "pics")
	media := testutil.CreateTestMedia(t, db, "/medias/ok.png")

	outcome, err := store.TweetMedias.AddMany(ctx, tweet.ID, []uint{media.ID, 31337})
	if err != nil {
		t.Fatalf("AddMany returned error: %v", err)
	}
	if outcome != repository.OutcomeNotFound {
		t.Errorf("AddMany = %v, want not_found", outcome)
	}

	var links int64
	db.Model(&models.TweetMedia{}).Count(&links)
	if links != 0 {
		t.Errorf("Expected no links after rollback, got %d", links)
	}

	if outcome, err := store.TweetMedias.AddMany(ctx, tweet.ID, nil); err != nil || outcome != repository.OutcomeApplied {
		t.Errorf("empty AddMany = %v, %v", outcome, err)
	}
}

func TestLikeAddDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, db, "a", "key_a")
	tweet := testutil.CreateTestTweet(t, db, a, "like me")

	like := &models.Like{TweetID: tweet.ID, UserID: a.ID}
	if outcome, err := store.Likes.Add(ctx, like); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("Add = %v, %v", outcome, err)
	}
	if outcome, err := store.Likes.Add(ctx, &models.Like{TweetID: tweet.ID, UserID: a.ID}); err != nil || outcome != repository.OutcomeConflict {
		t.Errorf("duplicate Add = %v, %v, want conflict", outcome, err)
	}

	got, err := store.Likes.Get(ctx, tweet.ID, a.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if outcome, err := store.Likes.Delete(ctx, got); err != nil || outcome != repository.OutcomeApplied {
		t.Errorf("Delete = %v, %v", outcome, err)
	}
	if _, err := store.Likes.Get(ctx, tweet.ID, a.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected like to be gone, got %v", err)
	}
}

func TestUserAddDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.New(db)
	ctx := context.Background()

	user := &models.User{Name: "new", APIKey: "key_new"}
	if outcome, err := store.Users.Add(ctx, user); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("Add = %v, %v", outcome, err)
	}
	if outcome, err := store.Users.Add(ctx, &models.User{Name: "clone", APIKey: "key_new"}); err != nil || outcome != repository.OutcomeConflict {
		t.Errorf("duplicate key Add = %v, %v, want conflict", outcome, err)
	}

	other := testutil.CreateTestUser(t, db, "other", "key_other")
	testutil.CreateTestFollow(t, db, other, user)
	testutil.CreateTestTweet(t, db, user, "bye")

	if outcome, err := store.Users.Delete(ctx, user); err != nil || outcome != repository.OutcomeApplied {
		t.Fatalf("Delete = %v, %v", outcome, err)
	}

	var tweets, edges int64
	db.Model(&models.Tweet{}).Count(&tweets)
	db.Model(&models.Follow{}).Count(&edges)
	if tweets != 0 || edges != 0 {
		t.Errorf("Expected cascades, got %d tweets %d edges", tweets, edges)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := map[repository.Outcome]string{
		repository.OutcomeApplied:  "applied",
		repository.OutcomeConflict: "conflict",
		repository.OutcomeNotFound: "not_found",
	}
	for outcome, want := range tests {
		if got := outcome.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", outcome, got, want)
		}
	}
}

func assertRefs(t *testing.T, label string, got, want []models.UserRef) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %+v, want %+v", label, i, got[i], want[i])
		}
	}
}
