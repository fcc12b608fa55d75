package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/notesd/internal/auth"
)

// CookieJar reads and writes the credential cookies.
type CookieJar struct {
	cfg iauth.CookieConfig
}

// NewCookieJar builds a CookieJar, applying defaults to cfg.
func NewCookieJar(cfg iauth.CookieConfig) *CookieJar {
	return &CookieJar{cfg: cfg.WithDefaults()}
}

// Config returns the effective cookie configuration.
func (j *CookieJar) Config() iauth.CookieConfig {
	return j.cfg
}

// Read extracts both credentials from the request. Missing cookies yield empty strings.
func (j *CookieJar) Read(c *gin.Context) iauth.Credentials {
	access, _ := c.Cookie(j.cfg.AccessName)
	refresh, _ := c.Cookie(j.cfg.RefreshName)
	return iauth.Credentials{Access: access, Refresh: refresh}
}

// SetAccess writes the access cookie.
func (j *CookieJar) SetAccess(c *gin.Context, token string) {
	j.write(c, j.cfg.AccessName, token, int(j.cfg.AccessTTL.Seconds()))
}

// SetRefresh writes the refresh cookie.
func (j *CookieJar) SetRefresh(c *gin.Context, token string) {
	j.write(c, j.cfg.RefreshName, token, int(j.cfg.RefreshTTL.Seconds()))
}

// SetPair writes both cookies.
func (j *CookieJar) SetPair(c *gin.Context, pair iauth.TokenPair) {
	j.SetAccess(c, pair.AccessToken)
	j.SetRefresh(c, pair.RefreshToken)
}

// Clear expires both credential cookies.
func (j *CookieJar) Clear(c *gin.Context) {
	j.write(c, j.cfg.AccessName, "", -1)
	j.write(c, j.cfg.RefreshName, "", -1)
}

func (j *CookieJar) write(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.cfg.Path,
		Domain:   j.cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   IsSecureRequest(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// IsSecureRequest reports whether the request arrived over TLS directly or via a proxy.
func IsSecureRequest(c *gin.Context) bool {
	if c.Request == nil {
		return false
	}
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}
