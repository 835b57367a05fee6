package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func TestPlaylistHandlerCreate(t *testing.T) {
	store := newInMemoryPlaylistStore()
	handler := PlaylistHandler{Playlists: store, Videos: newInMemoryVideoStore()}

	body := strings.NewReader(`{"name":"  Watch later  ","description":"queued clips"}`)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/playlist", body), models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var created models.Playlist
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if created.Name != "Watch later" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.OwnerID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", created.OwnerID)
	}

	stored, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find created playlist: %v", err)
	}
	if stored.Description != "queued clips" {
		t.Fatalf("expected description persisted, got %q", stored.Description)
	}
}

func TestPlaylistHandlerCreateValidation(t *testing.T) {
	handler := PlaylistHandler{Playlists: newInMemoryPlaylistStore(), Videos: newInMemoryVideoStore()}

	body := strings.NewReader(`{"name":"   "}`)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/playlist", body), models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec.Body)
	if len(env.Errors) == 0 {
		t.Fatal("expected field errors in response")
	}
}

func TestPlaylistHandlerAddVideoIdempotent(t *testing.T) {
	playlists := newInMemoryPlaylistStore()
	videos := newInMemoryVideoStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: videos}

	owner := models.User{ID: "user-1"}
	seedPlaylist(t, playlists, "list-1", owner.ID)
	if err := videos.Create(context.Background(), models.Video{ID: "video-1", OwnerID: owner.ID}); err != nil {
		t.Fatalf("seed video: %v", err)
	}

	add := func() {
		req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/add/video-1/list-1", nil), owner)
		req.SetPathValue("videoId", "video-1")
		req.SetPathValue("playlistId", "list-1")
		rec := httptest.NewRecorder()

		handler.AddVideo(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
	}
	add()
	add()

	detail, err := playlists.Detail(context.Background(), "list-1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.TotalVideos != 1 {
		t.Fatalf("expected 1 video after duplicate add, got %d", detail.TotalVideos)
	}
}

func TestPlaylistHandlerAddVideoMissingVideo(t *testing.T) {
	playlists := newInMemoryPlaylistStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: newInMemoryVideoStore()}

	owner := models.User{ID: "user-1"}
	seedPlaylist(t, playlists, "list-1", owner.ID)

	req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/add/ghost/list-1", nil), owner)
	req.SetPathValue("videoId", "ghost")
	req.SetPathValue("playlistId", "list-1")
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec.Body)
	if env.Message != "video not found" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestPlaylistHandlerRemoveVideoAbsent(t *testing.T) {
	playlists := newInMemoryPlaylistStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: newInMemoryVideoStore()}

	owner := models.User{ID: "user-1"}
	seedPlaylist(t, playlists, "list-1", owner.ID)

	req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/remove/video-1/list-1", nil), owner)
	req.SetPathValue("videoId", "video-1")
	req.SetPathValue("playlistId", "list-1")
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec.Body)
	if env.Message != "video is not in this playlist" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestPlaylistHandlerUpdateRequiresOwnership(t *testing.T) {
	playlists := newInMemoryPlaylistStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: newInMemoryVideoStore()}

	seedPlaylist(t, playlists, "list-1", "owner")

	body := strings.NewReader(`{"name":"hijacked"}`)
	req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlist/list-1", body), models.User{ID: "intruder"})
	req.SetPathValue("playlistId", "list-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}

	stored, err := playlists.FindByID(context.Background(), "list-1")
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if stored.Name != "favorites" {
		t.Fatalf("expected name unchanged, got %q", stored.Name)
	}
}

func seedPlaylist(t *testing.T, store *inMemoryPlaylistStore, id, ownerID string) {
	t.Helper()
	err := store.Create(context.Background(), models.Playlist{
		ID:      id,
		OwnerID: ownerID,
		Name:    "favorites",
	})
	if err != nil {
		t.Fatalf("seed playlist: %v", err)
	}
}
