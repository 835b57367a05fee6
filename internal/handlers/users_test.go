package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

func newTestTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	return auth.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 240*time.Hour)
}

func seedUser(t *testing.T, store *inMemoryUserStore, id, username, password string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test User",
		PasswordHash: string(hashed),
	}
	if err := store.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUserHandlerLogin(t *testing.T) {
	store := newInMemoryUserStore()
	manager := newTestTokenManager(t)
	handler := UserHandler{Users: store, Tokens: manager}

	seedUser(t, store, "user-1", "maya", "correct horse")

	body, err := json.Marshal(loginRequest{Username: "maya", Password: "correct horse"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var resp loginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode login payload: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected tokens to be issued")
	}

	stored, err := store.FindByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.RefreshToken != resp.RefreshToken {
		t.Fatal("expected refresh token to be persisted on the user")
	}

	cookies := rec.Result().Cookies()
	var gotAccess, gotRefresh bool
	for _, c := range cookies {
		switch c.Name {
		case accessCookie:
			gotAccess = true
		case refreshCookie:
			gotRefresh = true
		}
		if !c.HttpOnly {
			t.Fatalf("cookie %s must be http-only", c.Name)
		}
	}
	if !gotAccess || !gotRefresh {
		t.Fatalf("expected both auth cookies, got %v", cookies)
	}
}

func TestUserHandlerLoginWrongPassword(t *testing.T) {
	store := newInMemoryUserStore()
	handler := UserHandler{Users: store, Tokens: newTestTokenManager(t)}

	seedUser(t, store, "user-1", "maya", "correct horse")

	body, _ := json.Marshal(loginRequest{Username: "maya", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if env := decodeEnvelope(t, rec.Body); env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestUserHandlerLoginUnknownUser(t *testing.T) {
	handler := UserHandler{Users: newInMemoryUserStore(), Tokens: newTestTokenManager(t)}

	body, _ := json.Marshal(loginRequest{Username: "ghost", Password: "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUserHandlerRefreshRotatesToken(t *testing.T) {
	store := newInMemoryUserStore()
	manager := newTestTokenManager(t)
	handler := UserHandler{Users: store, Tokens: manager}

	user := seedUser(t, store, "user-1", "maya", "correct horse")

	pair, err := manager.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if err := store.SetRefreshToken(context.Background(), user.ID, pair.RefreshToken); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}

	body, _ := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh_token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var rotated models.TokenPair
	if err := json.Unmarshal(env.Data, &rotated); err != nil {
		t.Fatalf("decode token pair: %v", err)
	}
	if rotated.RefreshToken == "" {
		t.Fatal("expected a new refresh token")
	}

	stored, _ := store.FindByID(context.Background(), user.ID)
	if stored.RefreshToken != rotated.RefreshToken {
		t.Fatal("expected rotated refresh token to replace the stored slot")
	}
}

func TestUserHandlerRefreshRejectsReplacedToken(t *testing.T) {
	store := newInMemoryUserStore()
	manager := newTestTokenManager(t)
	handler := UserHandler{Users: store, Tokens: manager}

	user := seedUser(t, store, "user-1", "maya", "correct horse")

	// Two sessions: the second login overwrites the slot, so the first
	// refresh token must be rejected despite a valid signature. The issue
	// times are forced apart so the tokens differ.
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	manager.WithNowFunc(func() time.Time { return issued })
	first, err := manager.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	manager.WithNowFunc(func() time.Time { return issued.Add(time.Second) })
	second, err := manager.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if err := store.SetRefreshToken(context.Background(), user.ID, second.RefreshToken); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}

	body, _ := json.Marshal(refreshRequest{RefreshToken: first.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh_token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if env := decodeEnvelope(t, rec.Body); env.Message != "refresh token is expired or used" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestUserHandlerLogOutClearsRefreshToken(t *testing.T) {
	store := newInMemoryUserStore()
	handler := UserHandler{Users: store, Tokens: newTestTokenManager(t)}

	user := seedUser(t, store, "user-1", "maya", "correct horse")
	if err := store.SetRefreshToken(context.Background(), user.ID, "some-refresh-token"); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), user)
	rec := httptest.NewRecorder()

	handler.LogOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	stored, _ := store.FindByID(context.Background(), user.ID)
	if stored.RefreshToken != "" {
		t.Fatal("expected refresh token slot to be cleared")
	}

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge != -1 {
			t.Fatalf("expected cookie %s to be expired, got MaxAge %d", c.Name, c.MaxAge)
		}
	}
}

func TestUserHandlerChangePassword(t *testing.T) {
	store := newInMemoryUserStore()
	handler := UserHandler{Users: store, Tokens: newTestTokenManager(t)}

	user := seedUser(t, store, "user-1", "maya", "old password")

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "old password", NewPassword: "new password"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/users/change_password", bytes.NewReader(body)), user)
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, _ := store.FindByID(context.Background(), user.ID)
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new password")) != nil {
		t.Fatal("expected stored hash to match the new password")
	}
}

func TestUserHandlerChangePasswordWrongOld(t *testing.T) {
	store := newInMemoryUserStore()
	handler := UserHandler{Users: store, Tokens: newTestTokenManager(t)}

	user := seedUser(t, store, "user-1", "maya", "old password")

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "not it", NewPassword: "new password"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/users/change_password", bytes.NewReader(body)), user)
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerRegister(t *testing.T) {
	store := newInMemoryUserStore()
	media := &fakeMediaStorage{}
	handler := UserHandler{Users: store, Tokens: newTestTokenManager(t), Media: media}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("fullName", "Maya Lindgren")
	_ = form.WriteField("email", "Maya@Example.com")
	_ = form.WriteField("username", "MayaStreams")
	_ = form.WriteField("password", "a-long-password")
	avatar, _ := form.CreateFormFile("avatar", "face.png")
	_, _ = avatar.Write([]byte("png-bytes"))
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var created models.User
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if created.Username != "mayastreams" || created.Email != "maya@example.com" {
		t.Fatalf("expected lowercased identity fields, got %+v", created)
	}
	if created.AvatarURL == "" {
		t.Fatal("expected avatar url to be set")
	}
	if len(media.saved) != 1 {
		t.Fatalf("expected one stored object, got %v", media.saved)
	}

	// The password hash must never appear on the wire.
	var raw map[string]any
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		t.Fatalf("decode raw payload: %v", err)
	}
	for _, key := range []string{"password", "passwordHash", "refreshToken"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("sensitive field %q leaked in response", key)
		}
	}

	stored, err := store.FindByLogin(context.Background(), "mayastreams")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("a-long-password")) != nil {
		t.Fatal("stored password is not hashed")
	}
}

func TestUserHandlerRegisterDuplicate(t *testing.T) {
	cases := []struct {
		name     string
		username string
		email    string
	}{
		{name: "username taken", username: "maya", email: "fresh@example.com"},
		{name: "email taken", username: "freshname", email: "maya@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newInMemoryUserStore()
			media := &fakeMediaStorage{}
			handler := UserHandler{Users: store, Tokens: newTestTokenManager(t), Media: media}

			seedUser(t, store, "user-1", "maya", "password")

			var body bytes.Buffer
			form := multipart.NewWriter(&body)
			_ = form.WriteField("fullName", "Maya Again")
			_ = form.WriteField("email", tc.email)
			_ = form.WriteField("username", tc.username)
			_ = form.WriteField("password", "a-long-password")
			avatar, _ := form.CreateFormFile("avatar", "face.png")
			_, _ = avatar.Write([]byte("png-bytes"))
			_ = form.Close()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &body)
			req.Header.Set("Content-Type", form.FormDataContentType())
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			if rec.Code != http.StatusConflict {
				t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
			}
			if len(media.saved) != 0 {
				t.Fatalf("duplicate register must not upload media, saved %v", media.saved)
			}
		})
	}
}

func TestUserHandlerRegisterMissingAvatar(t *testing.T) {
	handler := UserHandler{Users: newInMemoryUserStore(), Tokens: newTestTokenManager(t), Media: &fakeMediaStorage{}}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("fullName", "No Avatar")
	_ = form.WriteField("email", "noavatar@example.com")
	_ = form.WriteField("username", "noavatar")
	_ = form.WriteField("password", "a-long-password")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerRegisterValidation(t *testing.T) {
	handler := UserHandler{Users: newInMemoryUserStore(), Tokens: newTestTokenManager(t), Media: &fakeMediaStorage{}}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("fullName", "Bad Email")
	_ = form.WriteField("email", "not-an-email")
	_ = form.WriteField("username", "ok")
	_ = form.WriteField("password", "short")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
	if env := decodeEnvelope(t, rec.Body); len(env.Errors) == 0 {
		t.Fatal("expected field errors in the envelope")
	}
}
