package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// VideoSort names the orderable columns for video listings.
type VideoSort string

const (
	SortByCreatedAt VideoSort = "createdAt"
	SortByViews     VideoSort = "views"
	SortByDuration  VideoSort = "duration"
)

// ListVideosParams filters and orders the public video listing.
type ListVideosParams struct {
	// Query is matched as a substring of title or description.
	Query string
	// OwnerID restricts results to a single channel when non-empty.
	OwnerID   string
	SortBy    VideoSort
	Ascending bool
	Page      Page
}

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, params ListVideosParams) ([]models.VideoSummary, error)
	// Detail assembles the denormalized video page for the given viewer.
	// Comments are attached separately by the caller.
	Detail(ctx context.Context, id, viewerID string) (models.VideoDetail, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	// Delete removes the video together with its likes, comments and
	// comment likes in a single transaction.
	Delete(ctx context.Context, id string) error
}
