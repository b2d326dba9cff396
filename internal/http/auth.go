package httpapi

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/services"
)

type contextKey string

const (
	ctxClaims     contextKey = "sessionClaims"
	ctxAdminToken contextKey = "adminToken"
)

const sessionCookie = "session"

// WithSession resolves the caller's session token and admin token into the
// request context. It never rejects a request on its own.
func (s *Server) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if claims, ok := s.sessionClaims(r); ok {
			ctx = context.WithValue(ctx, ctxClaims, claims)
		}
		if s.adminTokenValid(r.Header.Get("X-Admin-Token")) {
			ctx = context.WithValue(ctx, ctxAdminToken, true)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) adminTokenValid(token string) bool {
	if s.Config.AdminToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.Config.AdminToken)) == 1
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (s *Server) sessionClaims(r *http.Request) (services.SessionClaims, bool) {
	tokenStr := sessionToken(r)
	if tokenStr == "" {
		return services.SessionClaims{}, false
	}
	claims, err := s.Tokens.ParseSessionToken(tokenStr)
	if err != nil {
		return services.SessionClaims{}, false
	}
	revoked, err := s.Revocations.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		log.Printf("session revocation check: %v", err)
		return services.SessionClaims{}, false
	}
	if revoked {
		return services.SessionClaims{}, false
	}
	return claims, true
}

func currentClaims(ctx context.Context) (services.SessionClaims, bool) {
	claims, ok := ctx.Value(ctxClaims).(services.SessionClaims)
	return claims, ok
}

// CurrentUser returns the signed-in user, if any.
func CurrentUser(ctx context.Context) *models.SessionUser {
	claims, ok := currentClaims(ctx)
	if !ok {
		return nil
	}
	user := claims.User()
	return &user
}

// IsAdmin reports whether the request carried the admin token or an admin
// session.
func IsAdmin(ctx context.Context) bool {
	if ok, _ := ctx.Value(ctxAdminToken).(bool); ok {
		return true
	}
	claims, ok := currentClaims(ctx)
	return ok && claims.Admin
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
