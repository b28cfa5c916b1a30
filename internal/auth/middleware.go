package auth

import (
	"context"
	"net/http"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SessionMiddleware never rejects a request. When the session cookie is valid
// it stores the user id in the context and, past half of the token's
// lifetime, reissues the cookie (sliding session).
func (h *AuthHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, exp, err := h.ParseToken(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if !exp.IsZero() && exp.Sub(h.now()) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(userID); err == nil {
				c := h.sessionCookie(newToken)
				http.SetCookie(w, &c)
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
