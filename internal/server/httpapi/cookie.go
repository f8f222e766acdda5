package httpapi

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// CookieTransport implements services.SessionTransport over an HTTP
// request/response pair. The cookie is HttpOnly (unreadable by client-side
// script) and SameSite=Lax; Secure is controlled by configuration so local
// development over plain HTTP keeps working. The token is treated as an
// opaque string.
type CookieTransport struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
}

func NewCookieTransport(w http.ResponseWriter, r *http.Request, secure bool) *CookieTransport {
	return &CookieTransport{w: w, r: r, secure: secure}
}

func (t *CookieTransport) Store(token string, expires time.Time) {
	http.SetCookie(t.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (t *CookieTransport) Read() (string, bool) {
	cookie, err := t.r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (t *CookieTransport) Clear() {
	http.SetCookie(t.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
