package site

import (
	"context"
	"net/http"
	"strings"

	"walkintovoid/auth"
	"walkintovoid/database"

	"go.uber.org/zap"
)

type contextKey string

const (
	AuthenticatedUserTokenCookieName = "authenticated_user_token"

	signedInUserKey contextKey = "signed_in_user"
)

func getSignedInUserOrNil(r *http.Request) *database.User {
	u, _ := r.Context().Value(signedInUserKey).(*database.User)
	return u
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(AuthenticatedUserTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthenticatedUserTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Options.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// TryPutUserInContextMiddleware loads the session's user from the store on
// every request, so role changes apply immediately.
func (s *Server) TryPutUserInContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := s.Sessions.Parse(token)
		if err != nil {
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.Store.UserByID(r.Context(), userID)
		if err != nil {
			if !database.IsNotFound(err) {
				s.Logger.Warn("could not load session user", zap.String("user_id", userID), zap.Error(err))
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), signedInUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole short-circuits with 403 unless the signed-in user holds one of
// the roles.
func (s *Server) RequireRole(roles []database.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Authorize(getSignedInUserOrNil(r), roles, ""); err != nil {
				s.renderError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
