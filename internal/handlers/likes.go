package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
)

// LikeHandler implements like toggles across videos, comments and tweets.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

type toggleResult struct {
	Liked bool `json:"liked"`
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to toggle like")
		return
	}
	h.toggle(w, r, models.VideoTarget(id))
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("commentId")
	if _, err := h.Comments.FindByID(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to toggle like")
		return
	}
	h.toggle(w, r, models.CommentTarget(id))
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("tweetId")
	if _, err := h.Tweets.FindByID(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to toggle like")
		return
	}
	h.toggle(w, r, models.TweetTarget(id))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	liked, err := h.Likes.Toggle(ctx, user.ID, target)
	if err != nil {
		respondStoreError(ctx, w, err, "target not found", "failed to toggle like")
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respondData(ctx, w, http.StatusOK, toggleResult{Liked: liked}, message)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videos, err := h.Likes.LikedVideos(ctx, user.ID, pageFromQuery(r))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch liked videos")
		return
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched successfully")
}
