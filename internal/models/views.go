package models

import "time"

// Read-side view types. These are the denormalized shapes assembled by the
// repository join queries for the GET endpoints; they never feed writes.

// OwnerSummary is the slice of a user embedded in owned resources.
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// ChannelSummary extends OwnerSummary with the viewer-relative
// subscription fields shown on a video page.
type ChannelSummary struct {
	OwnerSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// ChannelProfile is the public profile for GET /users/c/{username}.
type ChannelProfile struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Avatar           string `json:"avatar"`
	CoverImage       string `json:"coverImage,omitempty"`
	SubscribersCount int64  `json:"subscribersCount"`
	SubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// VideoSummary is a video row joined with its owner, used in lists.
type VideoSummary struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	VideoURL    string       `json:"videoFile"`
	Thumbnail   string       `json:"thumbnail"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerSummary `json:"owner"`
}

// VideoDetail is the full video page: owner channel info, like state and
// the first page of comments in a single response.
type VideoDetail struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	VideoURL    string         `json:"videoFile"`
	Thumbnail   string         `json:"thumbnail"`
	Duration    float64        `json:"duration"`
	Views       int64          `json:"views"`
	Published   bool           `json:"isPublished"`
	CreatedAt   time.Time      `json:"createdAt"`
	Owner       ChannelSummary `json:"owner"`
	LikesCount  int64          `json:"likesCount"`
	IsLiked     bool           `json:"isLiked"`
	Comments    []CommentView  `json:"comments"`
}

// CommentView is a comment joined with its owner and like state.
type CommentView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// TweetView is a tweet joined with its owner and like state.
type TweetView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// PlaylistSummary carries a playlist with its aggregate counters.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int64     `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist expanded with its published videos.
type PlaylistDetail struct {
	PlaylistSummary
	Owner  OwnerSummary   `json:"owner"`
	Videos []VideoSummary `json:"videos"`
}
