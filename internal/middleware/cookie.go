package middleware

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookie carries the access token. Set and Clear derive from the
// same attributes so browsers actually drop the cookie on logout.
type SessionCookie struct {
	Name     string
	Path     string
	Domain   string
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// NewSessionCookie returns the production attributes (Secure, SameSite=None,
// scoped to domain) or the local-development ones.
func NewSessionCookie(name string, domain string, production bool, maxAge time.Duration) SessionCookie {
	c := SessionCookie{
		Name:     name,
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
		c.Domain = domain
	}
	return c
}

func (c SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (c SessionCookie) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(token, int(c.MaxAge/time.Second)))
}

func (c SessionCookie) Clear(w http.ResponseWriter) {
	cookie := c.cookie("", -1)
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// Read returns the token carried by the cookie, or "".
func (c SessionCookie) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
