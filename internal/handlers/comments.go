package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/validate"
)

// CommentHandler implements comment endpoints scoped to videos.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

// ListForVideo handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to fetch comments")
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, user.ID, pageFromQuery(r))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to fetch comments")
		return
	}
	if comments == nil {
		comments = []models.CommentView{}
	}

	respondData(ctx, w, http.StatusOK, comments, "comments fetched successfully")
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to add comment")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to add comment")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"))
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to update comment")
		return
	}
	if comment.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author can modify this comment")
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, comment.ID, req.Content)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to update comment")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"))
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to delete comment")
		return
	}
	if comment.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author can delete this comment")
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to delete comment")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "comment deleted successfully")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
