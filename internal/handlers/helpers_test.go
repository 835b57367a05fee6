package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// envelope mirrors the wire format for decoding in tests.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func authed(r *http.Request, user models.User) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), user))
}

type inMemoryUserStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	history map[string][]string
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{
		users:   make(map[string]models.User),
		history: make(map[string][]string),
	}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByLogin(_ context.Context, identifier string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) ExistsByLogin(_ context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *inMemoryUserStore) UpdateAccount(_ context.Context, id, fullName, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.FullName = fullName
	user.Email = email
	s.users[id] = user
	return user, nil
}

func (s *inMemoryUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *inMemoryUserStore) UpdateAvatar(_ context.Context, id, url, key string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.AvatarURL = url
	user.AvatarKey = key
	s.users[id] = user
	return user, nil
}

func (s *inMemoryUserStore) UpdateCover(_ context.Context, id, url, key string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.CoverURL = url
	user.CoverKey = key
	s.users[id] = user
	return user, nil
}

func (s *inMemoryUserStore) SetRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[id] = user
	return nil
}

func (s *inMemoryUserStore) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return models.ChannelProfile{ID: user.ID, Username: user.Username, FullName: user.FullName}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) WatchHistory(_ context.Context, userID string, _ repositories.Page) ([]models.VideoSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.history[userID]
	out := make([]models.VideoSummary, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, models.VideoSummary{ID: ids[i]})
	}
	return out, nil
}

func (s *inMemoryUserStore) AddWatchHistory(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.history[userID]
	for i, id := range ids {
		if id == videoID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	s.history[userID] = append(ids, videoID)
	return nil
}

var _ UserStore = (*inMemoryUserStore)(nil)

type fakeMediaStorage struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (f *fakeMediaStorage) Save(_ context.Context, key string, _ io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, key)
	return fmt.Sprintf("https://media.test/%s", key), nil
}

func (f *fakeMediaStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

var _ MediaStorage = (*fakeMediaStorage)(nil)

type inMemoryVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) List(_ context.Context, _ repositories.ListVideosParams) ([]models.VideoSummary, error) {
	return nil, nil
}

func (s *inMemoryVideoStore) Detail(_ context.Context, id, _ string) (models.VideoDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.VideoDetail{}, repositories.ErrNotFound
	}
	return models.VideoDetail{ID: video.ID, Title: video.Title, Views: video.Views}, nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Published = published
	s.videos[id] = video
	return nil
}

func (s *inMemoryVideoStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

var _ VideoStore = (*inMemoryVideoStore)(nil)

type inMemoryLikeStore struct {
	mu    sync.Mutex
	likes map[string]struct{}
}

func newInMemoryLikeStore() *inMemoryLikeStore {
	return &inMemoryLikeStore{likes: make(map[string]struct{})}
}

func (s *inMemoryLikeStore) Toggle(_ context.Context, likedBy string, target models.LikeTarget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s|%s|%s", likedBy, target.Kind(), target.ID())
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = struct{}{}
	return true, nil
}

func (s *inMemoryLikeStore) LikedVideos(_ context.Context, _ string, _ repositories.Page) ([]models.VideoSummary, error) {
	return nil, nil
}

var _ LikeStore = (*inMemoryLikeStore)(nil)

type inMemoryTweetStore struct {
	mu     sync.Mutex
	tweets map[string]models.Tweet
}

func newInMemoryTweetStore() *inMemoryTweetStore {
	return &inMemoryTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *inMemoryTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *inMemoryTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *inMemoryTweetStore) ListForUser(_ context.Context, ownerID, _ string, _ repositories.Page) ([]models.TweetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TweetView
	for _, tweet := range s.tweets {
		if tweet.OwnerID != ownerID {
			continue
		}
		out = append(out, models.TweetView{
			ID:        tweet.ID,
			Content:   tweet.Content,
			CreatedAt: tweet.CreatedAt,
			Owner:     models.OwnerSummary{ID: tweet.OwnerID},
		})
	}
	return out, nil
}

func (s *inMemoryTweetStore) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *inMemoryTweetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

var _ TweetStore = (*inMemoryTweetStore)(nil)

type inMemorySubscriptionStore struct {
	mu   sync.Mutex
	subs map[string]struct{}
}

func newInMemorySubscriptionStore() *inMemorySubscriptionStore {
	return &inMemorySubscriptionStore{subs: make(map[string]struct{})}
}

func (s *inMemorySubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subscriberID + "|" + channelID
	if _, ok := s.subs[key]; ok {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = struct{}{}
	return true, nil
}

func (s *inMemorySubscriptionStore) Subscribers(_ context.Context, _ string) ([]models.OwnerSummary, error) {
	return nil, nil
}

func (s *inMemorySubscriptionStore) SubscribedChannels(_ context.Context, _ string) ([]models.OwnerSummary, error) {
	return nil, nil
}

var _ SubscriptionStore = (*inMemorySubscriptionStore)(nil)

type inMemoryPlaylistStore struct {
	mu        sync.Mutex
	playlists map[string]models.Playlist
	members   map[string][]string
}

func newInMemoryPlaylistStore() *inMemoryPlaylistStore {
	return &inMemoryPlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
	}
}

func (s *inMemoryPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *inMemoryPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *inMemoryPlaylistStore) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *inMemoryPlaylistStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.members, id)
	return nil
}

func (s *inMemoryPlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[playlistID]; !ok {
		return repositories.ErrNotFound
	}
	for _, id := range s.members[playlistID] {
		if id == videoID {
			return nil
		}
	}
	s.members[playlistID] = append(s.members[playlistID], videoID)
	return nil
}

func (s *inMemoryPlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.members[playlistID]
	for i, id := range ids {
		if id == videoID {
			s.members[playlistID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *inMemoryPlaylistStore) Detail(_ context.Context, id string) (models.PlaylistDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.PlaylistDetail{}, repositories.ErrNotFound
	}
	return models.PlaylistDetail{
		PlaylistSummary: models.PlaylistSummary{
			ID:          playlist.ID,
			Name:        playlist.Name,
			Description: playlist.Description,
			TotalVideos: int64(len(s.members[id])),
			CreatedAt:   playlist.CreatedAt,
			UpdatedAt:   playlist.UpdatedAt,
		},
	}, nil
}

func (s *inMemoryPlaylistStore) ListForUser(_ context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PlaylistSummary
	for _, playlist := range s.playlists {
		if playlist.OwnerID != ownerID {
			continue
		}
		out = append(out, models.PlaylistSummary{
			ID:          playlist.ID,
			Name:        playlist.Name,
			Description: playlist.Description,
			TotalVideos: int64(len(s.members[playlist.ID])),
		})
	}
	return out, nil
}

var _ PlaylistStore = (*inMemoryPlaylistStore)(nil)
