package models

import "time"

// User represents an account within the VidTube platform. Every account is
// also a channel that other users can subscribe to.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar"`
	AvatarKey    string    `json:"-"`
	CoverURL     string    `json:"coverImage,omitempty"`
	CoverKey     string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Video stores an uploaded video along with its remote media references.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	VideoKey     string    `json:"-"`
	ThumbnailURL string    `json:"thumbnail"`
	ThumbnailKey string    `json:"-"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment is a remark left on a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short text post on a user's channel.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist is a named collection of videos owned by a user. Membership is
// a set: adding the same video twice keeps a single entry.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subscription records that a user follows another user's channel.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TargetKind discriminates the entity a like points at.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// LikeTarget identifies exactly one likeable entity. Values are built
// through the constructor functions so a like can never reference more
// than one kind at a time.
type LikeTarget struct {
	kind TargetKind
	id   string
}

// VideoTarget returns a like target pointing at a video.
func VideoTarget(id string) LikeTarget { return LikeTarget{kind: TargetVideo, id: id} }

// CommentTarget returns a like target pointing at a comment.
func CommentTarget(id string) LikeTarget { return LikeTarget{kind: TargetComment, id: id} }

// TweetTarget returns a like target pointing at a tweet.
func TweetTarget(id string) LikeTarget { return LikeTarget{kind: TargetTweet, id: id} }

// Kind reports which entity kind the target references.
func (t LikeTarget) Kind() TargetKind { return t.kind }

// ID reports the referenced entity id.
func (t LikeTarget) ID() string { return t.id }

// Zero reports whether the target was never initialised.
func (t LikeTarget) Zero() bool { return t.kind == "" || t.id == "" }

// Like is a join-row between a user and a single likeable entity.
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	CreatedAt time.Time
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
