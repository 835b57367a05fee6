package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/validate"
)

const maxUploadMemory = 32 << 20

// UserHandler implements registration, authentication and profile endpoints.
type UserHandler struct {
	Users   UserStore
	Tokens  TokenManager
	Media   MediaStorage
	Limiter RateLimiter
	NowFunc func() time.Time
}

type registerRequest struct {
	FullName string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=30"`
	Password string `validate:"required,min=8"`
}

// Register handles POST /api/v1/users/register (multipart).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := registerRequest{
		FullName: strings.TrimSpace(r.FormValue("fullName")),
		Email:    strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
		Username: strings.TrimSpace(strings.ToLower(r.FormValue("username"))),
		Password: r.FormValue("password"),
	}
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	// Checked before the uploads so a duplicate never reaches object storage.
	// The unique constraints backstop any race here via ErrConflict on Create.
	taken, err := h.Users.ExistsByLogin(ctx, req.Username, req.Email)
	if err != nil {
		logger.Error("register user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
		return
	}
	if taken {
		respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
		return
	}

	avatarFile, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer avatarFile.Close()

	avatarURL, avatarKey, err := saveUpload(ctx, h.Media, avatarFile, avatarHeader, "avatars")
	if err != nil {
		logger.Error("upload avatar", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	var coverURL, coverKey string
	if coverFile, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer coverFile.Close()
		coverURL, coverKey, err = saveUpload(ctx, h.Media, coverFile, coverHeader, "covers")
		if err != nil {
			logger.Error("upload cover image", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hashed),
		AvatarURL:    avatarURL,
		AvatarKey:    avatarKey,
		CoverURL:     coverURL,
		CoverKey:     coverKey,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "user with email or username already exists")
			return
		}
		logger.Error("create user", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to register user")
		return
	}

	respondData(ctx, w, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := strings.TrimSpace(strings.ToLower(req.Username))
	if identifier == "" {
		identifier = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if identifier == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user does not exist")
			return
		}
		logger.Error("login user lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to log in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid user credentials")
		return
	}

	pair, err := h.issueSession(ctx, user)
	if err != nil {
		logger.Error("issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setAuthCookies(w, pair, h.Tokens.AccessTTL(), h.Tokens.RefreshTTL())
	respondData(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// LogOut handles POST /api/v1/users/logout.
func (h UserHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, ""); err != nil {
		logging.FromContext(ctx).Error("clear refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to log out")
		return
	}

	clearAuthCookies(w)
	respondData(ctx, w, http.StatusOK, struct{}{}, "user logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh_token. The incoming token must
// verify and exactly match the single slot stored on the user record; a
// stale or reused token is rejected even when its signature is valid.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	incoming := ""
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		incoming = cookie.Value
	}
	if incoming == "" {
		var req refreshRequest
		if err := decodeJSON(r, &req); err == nil {
			incoming = strings.TrimSpace(req.RefreshToken)
		}
	}
	if incoming == "" {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	userID, err := h.Tokens.VerifyRefresh(incoming)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if user.RefreshToken == "" || user.RefreshToken != incoming {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is expired or used")
		return
	}

	pair, err := h.issueSession(ctx, user)
	if err != nil {
		logger.Error("refresh session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	setAuthCookies(w, pair, h.Tokens.AccessTTL(), h.Tokens.RefreshTTL())
	respondData(ctx, w, http.StatusOK, pair, "access token refreshed successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword handles POST /api/v1/users/change_password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid old password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(ctx).Error("hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to change password")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "password changed successfully")
}

// CurrentUser handles GET /api/v1/users/current_user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	respondData(ctx, w, http.StatusOK, user, "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateAccount handles PATCH /api/v1/users/update_account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fields := validate.Map(req); fields != nil {
		respondValidation(ctx, w, fields)
		return
	}

	updated, err := h.Users.UpdateAccount(ctx, user.ID, strings.TrimSpace(req.FullName), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "email already in use")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "avatar", "avatars",
		func(u models.User) string { return u.AvatarKey },
		h.Users.UpdateAvatar, "avatar updated successfully")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover_image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, "coverImage", "covers",
		func(u models.User) string { return u.CoverKey },
		h.Users.UpdateCover, "cover image updated successfully")
}

func (h UserHandler) updateMedia(w http.ResponseWriter, r *http.Request, field, prefix string,
	oldKey func(models.User) string,
	update func(ctx context.Context, id, url, key string) (models.User, error),
	message string,
) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, field+" file is required")
		return
	}
	defer file.Close()

	url, key, err := saveUpload(ctx, h.Media, file, header, prefix)
	if err != nil {
		logger.Error("upload "+field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store "+field)
		return
	}

	updated, err := update(ctx, user.ID, url, key)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to update "+field)
		return
	}

	if old := oldKey(user); old != "" {
		if err := h.Media.Delete(ctx, old); err != nil {
			logger.Warn("delete previous media object", "key", old, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, updated, message)
}

// ChannelProfile handles GET /api/v1/users/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewer.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel does not exist", "failed to fetch channel profile")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/watch_history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := currentUser(r)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videos, err := h.Users.WatchHistory(ctx, user.ID, pageFromQuery(r))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to fetch watch history")
		return
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}

	respondData(ctx, w, http.StatusOK, videos, "watch history fetched successfully")
}

// issueSession mints a token pair and persists the refresh token in the
// user's single slot, invalidating any previously issued session.
func (h UserHandler) issueSession(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := h.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// saveUpload writes a multipart file to the object store under a fresh key
// derived from the given prefix and the upload's extension.
func saveUpload(ctx context.Context, media MediaStorage, file multipart.File, header *multipart.FileHeader, prefix string) (string, string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename)))
	url, err := media.Save(ctx, key, file)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
