package auth

import "time"

// Default cookie names carrying the access and refresh credentials.
const (
	DefaultAccessCookieName  = "ACCESS"
	DefaultRefreshCookieName = "REFRESH"
)

// CookieConfig describes how credentials are carried in cookies.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Domain      string
	Path        string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

// WithDefaults fills unset fields.
func (c CookieConfig) WithDefaults() CookieConfig {
	if c.AccessName == "" {
		c.AccessName = DefaultAccessCookieName
	}
	if c.RefreshName == "" {
		c.RefreshName = DefaultRefreshCookieName
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = DefaultAccessTokenTTL
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = DefaultRefreshTokenTTL
	}
	return c
}
