package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// PlaylistRepository defines data access for playlists and their memberships.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	// AddVideo is a set-add: adding an already present video is a no-op.
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	// Detail expands the playlist with its published videos and totals.
	Detail(ctx context.Context, id string) (models.PlaylistDetail, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error)
}
