// Package api implements the Vellum REST API using chi.
package api

import (
	"context"
	"net/http"

	"github.com/calloway/vellum/internal/auth"
	"github.com/calloway/vellum/internal/store"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "vellum_session"

type ctxKey int

const userCtxKey ctxKey = 0

// SessionMiddleware resolves the session cookie to a user and stores it in
// the request context. Requests without a valid session pass through
// anonymously; individual routes decide whether that is acceptable.
func SessionMiddleware(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				if u, err := authSvc.Authenticate(r.Context(), c.Value); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userCtxKey, u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects anonymous requests with 401.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r) == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFrom returns the authenticated user, or nil for anonymous requests.
func userFrom(r *http.Request) *store.User {
	u, _ := r.Context().Value(userCtxKey).(*store.User)
	return u
}

// userID returns the authenticated user's id, or 0 for anonymous requests.
func userID(r *http.Request) int64 {
	if u := userFrom(r); u != nil {
		return u.ID
	}
	return 0
}
