package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// TweetRepository defines data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, ownerID, viewerID string, page Page) ([]models.TweetView, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	// Delete removes the tweet and any likes referencing it.
	Delete(ctx context.Context, id string) error
}
