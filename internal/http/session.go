package http

import (
	"context"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

type contextKey string

const (
	// accountContextKey carries the authenticated account through the request.
	accountContextKey contextKey = "account"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
)

// requireSession resolves the session cookie to an account and injects it
// into the request context. Anonymous or stale sessions are always redirected
// to the login page, never shown an error.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		acc, err := s.svc.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, acc)
		logger := log.FromContext(ctx).With(log.FieldAccountID, acc.ID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, logger)
		next(w, r.WithContext(ctx))
	}
}

// accountFrom returns the authenticated account placed by requireSession.
func accountFrom(r *http.Request) core.Account {
	acc, _ := r.Context().Value(accountContextKey).(core.Account)
	return acc
}

// Session cookies carry no MaxAge: they last for the browser session, while
// the server-side expiry caps their total lifetime.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
