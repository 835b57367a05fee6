package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// LikeRepository defines data access for likes across all target kinds.
type LikeRepository interface {
	// Toggle flips the like state for (user, target) and reports the
	// resulting state. The insert-first strategy plus the unique index
	// keeps concurrent duplicate toggles convergent.
	Toggle(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error)
	LikedVideos(ctx context.Context, userID string, page Page) ([]models.VideoSummary, error)
}
