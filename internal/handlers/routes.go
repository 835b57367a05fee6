package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Users: deps.Users, Tokens: deps.Tokens, Media: deps.Media, Limiter: deps.LoginLimiter}
	videos := VideoHandler{Videos: deps.Videos, Comments: deps.Comments, Users: deps.Users, Media: deps.Media}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}

	authn := Authenticator{Tokens: deps.Tokens, Users: deps.Users}
	protected := authn.Wrap

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh_token", users.Refresh)
	mux.HandleFunc("POST /api/v1/users/logout", protected(users.LogOut))
	mux.HandleFunc("POST /api/v1/users/change_password", protected(users.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/current_user", protected(users.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/update_account", protected(users.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/avatar", protected(users.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/cover_image", protected(users.UpdateCoverImage))
	mux.HandleFunc("GET /api/v1/users/c/{username}", protected(users.ChannelProfile))
	mux.HandleFunc("GET /api/v1/users/watch_history", protected(users.WatchHistory))

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos", protected(videos.Publish))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", protected(videos.Get))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", protected(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", protected(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/toggle_publish/{videoId}", protected(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/comments/{videoId}", protected(comments.ListForVideo))
	mux.HandleFunc("POST /api/v1/comments/{videoId}", protected(comments.Add))
	mux.HandleFunc("PATCH /api/v1/comments/c/{commentId}", protected(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/c/{commentId}", protected(comments.Delete))

	mux.HandleFunc("POST /api/v1/tweets", protected(tweets.Create))
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", protected(tweets.ListForUser))
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", protected(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", protected(tweets.Delete))

	mux.HandleFunc("POST /api/v1/likes/toggle/v/{videoId}", protected(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/toggle/c/{commentId}", protected(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/toggle/t/{tweetId}", protected(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", protected(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/playlist", protected(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlist/{playlistId}", protected(playlists.Get))
	mux.HandleFunc("PATCH /api/v1/playlist/{playlistId}", protected(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlist/{playlistId}", protected(playlists.Delete))
	mux.HandleFunc("PATCH /api/v1/playlist/add/{videoId}/{playlistId}", protected(playlists.AddVideo))
	mux.HandleFunc("PATCH /api/v1/playlist/remove/{videoId}/{playlistId}", protected(playlists.RemoveVideo))
	mux.HandleFunc("GET /api/v1/playlist/user/{userId}", protected(playlists.ListForUser))

	mux.HandleFunc("POST /api/v1/subscriptions/c/{channelId}", protected(subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions/u/{channelId}", protected(subscriptions.Subscribers))
	mux.HandleFunc("GET /api/v1/subscriptions/c/{subscriberId}", protected(subscriptions.SubscribedChannels))
}
