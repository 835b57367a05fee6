package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/validate"
)

// VideoHandler implements the video catalogue endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Comments CommentStore
	Users    UserStore
	Media    MediaStorage
	NowFunc  func() time.Time
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := repositories.ListVideosParams{
		Query:   strings.TrimSpace(q.Get("query")),
		OwnerID: strings.TrimSpace(q.Get("userId")),
		Page:    pageFromQuery(r),
	}

	switch repositories.VideoSort(q.Get("sortBy")) {
	case repositories.SortByViews:
		params.SortBy = repositories.SortByViews
	case repositories.SortByDuration:
		params.SortBy = repositories.SortByDuration
	default:
		params.SortBy = repositories.SortByCreatedAt
	}
	params.Ascending = strings.EqualFold(q.Get("sortType"), "asc")

	videos, err := h.Videos.List(ctx, params)
	if err != nil {
		logging.FromContext(ctx).Error("list videos", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch videos")
		return
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}

	respondData(ctx, w, http.StatusOK, videos, "videos fetched successfully")
}

type publishRequest struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"required,max=5000"`
}

// Publish handles POST /api/v1/videos (multipart). The uploaded video starts
// unpublished; TogglePublish flips it live.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := publishRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "duration must be a positive number of seconds")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	videoURL, videoKey, err := saveUpload(ctx, h.Media, videoFile, videoHeader, "videos")
	if err != nil {
		logger.Error("upload video file", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video file")
		return
	}
	thumbURL, thumbKey, err := saveUpload(ctx, h.Media, thumbFile, thumbHeader, "thumbnails")
	if err != nil {
		logger.Error("upload thumbnail", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      user.ID,
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     videoURL,
		VideoKey:     videoKey,
		ThumbnailURL: thumbURL,
		ThumbnailKey: thumbKey,
		Duration:     duration,
		Published:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("create video", "error", err, "ownerId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to publish video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video uploaded successfully")
}

// Get handles GET /api/v1/videos/{videoId}. Fetching a video counts a view
// and records it in the requesting user's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID := r.PathValue("videoId")
	detail, err := h.Videos.Detail(ctx, videoID, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to fetch video")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("increment views", "error", err, "videoId", videoID)
	} else {
		detail.Views++
	}
	if err := h.Users.AddWatchHistory(ctx, user.ID, videoID); err != nil {
		logger.Warn("record watch history", "error", err, "videoId", videoID)
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, user.ID, repositories.NewPage(1, 10))
	if err != nil {
		logger.Warn("fetch video comments", "error", err, "videoId", videoID)
	}
	if comments == nil {
		comments = []models.CommentView{}
	}
	detail.Comments = comments

	respondData(ctx, w, http.StatusOK, detail, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId} (multipart). Only the owner
// may edit; an included thumbnail replaces the stored object.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to fetch video")
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this video")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		video.Title = title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		video.Description = description
	}

	oldThumbKey := ""
	if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumbFile.Close()
		url, key, err := saveUpload(ctx, h.Media, thumbFile, thumbHeader, "thumbnails")
		if err != nil {
			logger.Error("upload thumbnail", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		oldThumbKey = video.ThumbnailKey
		video.ThumbnailURL = url
		video.ThumbnailKey = key
	}

	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to update video")
		return
	}

	if oldThumbKey != "" {
		if err := h.Media.Delete(ctx, oldThumbKey); err != nil {
			logger.Warn("delete previous thumbnail", "key", oldThumbKey, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}. The database rows go in a
// single transaction; object store cleanup runs afterwards on a best-effort
// basis so a storage hiccup cannot strand half-deleted rows.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to fetch video")
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can delete this video")
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("delete video", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}

	for _, key := range []string{video.VideoKey, video.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := h.Media.Delete(ctx, key); err != nil {
			logger.Warn("delete media object", "key", key, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle_publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to fetch video")
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this video")
		return
	}

	video.Published = !video.Published
	if err := h.Videos.SetPublished(ctx, video.ID, video.Published); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to toggle publish state")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "publish state toggled successfully")
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
