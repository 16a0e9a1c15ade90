package pkg

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionHeader lets token-based clients carry their session without cookies.
const SessionHeader = "X-Session-ID"

// SessionSource tells where the client session id was found.
type SessionSource int

const (
	SessionNew SessionSource = iota
	SessionFromHeader
	SessionFromCookie
)

// GenerateNewSessionID returns a fresh opaque client session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// SessionFromRequest returns the client session id carried by the header or the cookie.
// Only UUIDs are accepted; when neither carries one a new id is generated.
func SessionFromRequest(req *http.Request, cookieName string) (string, SessionSource) {
	if id, ok := parseSessionID(req.Header.Get(SessionHeader)); ok {
		return id, SessionFromHeader
	}

	if cookie, err := req.Cookie(cookieName); err == nil {
		if id, ok := parseSessionID(cookie.Value); ok {
			return id, SessionFromCookie
		}
	}

	return GenerateNewSessionID(), SessionNew
}

// parseSessionID - the canonical form is used as the storage key.
func parseSessionID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}

	return id.String(), true
}

// NewSessionCookie builds the session cookie. It is re-issued on every request so that it
// expires ttl after the last activity, like the stored game. A zero ttl yields a browser
// session cookie.
func NewSessionCookie(cookieName, id string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}

	return cookie
}
