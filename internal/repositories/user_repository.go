package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByLogin matches the identifier against username or email.
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	// ExistsByLogin reports whether the username or the email is taken.
	ExistsByLogin(ctx context.Context, username, email string) (bool, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url, key string) (models.User, error)
	UpdateCover(ctx context.Context, id, url, key string) (models.User, error)
	// SetRefreshToken stores the single active refresh token for the user.
	// An empty token clears the slot.
	SetRefreshToken(ctx context.Context, id, token string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string, page Page) ([]models.VideoSummary, error)
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}
