package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// Authenticator guards protected routes: it extracts the access token from
// the cookie or Authorization header, verifies it and loads the user onto
// the request context.
type Authenticator struct {
	Tokens TokenManager
	Users  UserStore
}

// Wrap returns a handler that only invokes next for authenticated requests.
func (a Authenticator) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		token := tokenFromRequest(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
			return
		}

		claims, err := a.Tokens.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respondError(ctx, w, http.StatusUnauthorized, "access token expired")
				return
			}
			logger.Warn("access token rejected", "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
			return
		}

		user, err := a.Users.FindByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(ctx, w, http.StatusUnauthorized, "invalid access token")
				return
			}
			logger.Error("load user for access token", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to authenticate request")
			return
		}

		next(w, r.WithContext(auth.WithUser(ctx, user)))
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// currentUser returns the user placed on the context by the Authenticator.
func currentUser(r *http.Request) (models.User, bool) {
	return auth.UserFromContext(r.Context())
}

func setAuthCookies(w http.ResponseWriter, pair models.TokenPair, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
