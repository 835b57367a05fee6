package handlers

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	ExistsByLogin(ctx context.Context, username, email string) (bool, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url, key string) (models.User, error)
	UpdateCover(ctx context.Context, id, url, key string) (models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string, page repositories.Page) ([]models.VideoSummary, error)
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}

// TokenManager mints and verifies the access/refresh token pair.
type TokenManager interface {
	Issue(userID, username string) (models.TokenPair, error)
	VerifyAccess(token string) (*auth.AccessClaims, error)
	VerifyRefresh(token string) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, params repositories.ListVideosParams) ([]models.VideoSummary, error)
	Detail(ctx context.Context, id, viewerID string) (models.VideoDetail, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID, viewerID string, page repositories.Page) ([]models.CommentView, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, ownerID, viewerID string, page repositories.Page) ([]models.TweetView, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore captures persistence for like toggles and listings.
type LikeStore interface {
	Toggle(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error)
	LikedVideos(ctx context.Context, userID string, page repositories.Page) ([]models.VideoSummary, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Detail(ctx context.Context, id string) (models.PlaylistDetail, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error)
}

// SubscriptionStore captures persistence for subscription workflows.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) ([]models.OwnerSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.OwnerSummary, error)
}

// MediaStorage is re-exported here so handler construction only needs this package.
type MediaStorage = storage.MediaStorage

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Tokens        TokenManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	Media         MediaStorage

	// LoginLimiter guards the credential endpoints. Nil disables limiting.
	LoginLimiter RateLimiter
}
