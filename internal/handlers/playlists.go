package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/validate"
)

// PlaylistHandler implements user-curated playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to create playlist")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	detail, err := h.Playlists.Detail(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to fetch playlist")
		return
	}
	if detail.Videos == nil {
		detail.Videos = []models.VideoSummary{}
	}

	respondData(ctx, w, http.StatusOK, detail, "playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	updated, err := h.Playlists.Update(ctx, playlist.ID, req.Name, req.Description)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to update playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to delete playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
// Re-adding a video the playlist already holds is a no-op success.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to add video to playlist")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to add video to playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlist, err := h.ownedPlaylist(w, r, user.ID)
	if err != nil {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		respondStoreError(ctx, w, err, "video is not in this playlist", "failed to remove video from playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "video removed from playlist")
}

// ListForUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := currentUser(r); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, r.PathValue("userId"))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch playlists")
		return
	}
	if playlists == nil {
		playlists = []models.PlaylistSummary{}
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// ownedPlaylist loads the playlist from the path and enforces ownership,
// writing the error response itself when the check fails.
func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request, userID string) (models.Playlist, error) {
	ctx := r.Context()
	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to fetch playlist")
		return models.Playlist{}, err
	}
	if playlist.OwnerID != userID {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this playlist")
		return models.Playlist{}, errForbidden
	}
	return playlist, nil
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

var errForbidden = errors.New("forbidden")
