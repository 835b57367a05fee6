package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

const tweetMaxLength = 280

// htmlTagPattern strips markup from tweet content before it is stored.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Users   UserStore
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

// sanitizeTweet removes HTML tags and collapses surrounding whitespace.
func sanitizeTweet(content string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(content, ""))
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req tweetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := sanitizeTweet(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}
	if utf8.RuneCountInString(content) > tweetMaxLength {
		respondError(ctx, w, http.StatusBadRequest, "content must be 280 characters or fewer")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to create tweet")
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	ownerID := r.PathValue("userId")
	if _, err := h.Users.FindByID(ctx, ownerID); err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch tweets")
		return
	}

	tweets, err := h.Tweets.ListForUser(ctx, ownerID, viewer.ID, pageFromQuery(r))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch tweets")
		return
	}
	if tweets == nil {
		tweets = []models.TweetView{}
	}

	respondData(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req tweetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := sanitizeTweet(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}
	if utf8.RuneCountInString(content) > tweetMaxLength {
		respondError(ctx, w, http.StatusBadRequest, "content must be 280 characters or fewer")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to update tweet")
		return
	}
	if tweet.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author can modify this tweet")
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweet.ID, content)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to update tweet")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to delete tweet")
		return
	}
	if tweet.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author can delete this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to delete tweet")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "tweet deleted successfully")
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
