package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	// ListForVideo returns the newest comments first together with owner
	// summaries and the viewer's like state.
	ListForVideo(ctx context.Context, videoID, viewerID string, page Page) ([]models.CommentView, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	// Delete removes the comment and any likes referencing it.
	Delete(ctx context.Context, id string) error
}
