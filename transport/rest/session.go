package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-api/internal/pkg"
)

type sessionKey struct{}

// sessionMiddleware resolves the client session. Cookie clients get their cookie re-issued on
// every request, so it slides along with the stored game TTL.
func sessionMiddleware(cookieName string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, source := pkg.SessionFromRequest(r, cookieName)
			if source != pkg.SessionFromHeader {
				http.SetCookie(w, pkg.NewSessionCookie(cookieName, id, ttl))
			}
			w.Header().Set(pkg.SessionHeader, id)

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
		})
	}
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
