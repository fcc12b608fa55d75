package app

import (
	"strings"

	"github.com/charlesng35/notesd/internal/auth"
)

const defaultSessionTokenBytes = 32

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	accessTTL := c.Access.TTL
	if accessTTL <= 0 {
		accessTTL = auth.DefaultAccessTokenTTL
	}
	refreshTTL := c.Refresh.TTL
	if refreshTTL <= 0 {
		refreshTTL = auth.DefaultRefreshTokenTTL
	}

	return auth.JWTConfig{
		Access:  auth.TokenConfig{Secret: c.Access.Secret, TTL: accessTTL},
		Refresh: auth.TokenConfig{Secret: c.Refresh.Secret, TTL: refreshTTL},
		Issuer:  strings.TrimSpace(c.Access.Issuer),
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters.
// Sessions live exactly as long as the refresh token that references them.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.Refresh.TTL
	if ttl <= 0 {
		ttl = auth.DefaultRefreshTokenTTL
	}

	tokenBytes := c.Session.TokenBytes
	if tokenBytes <= 0 {
		tokenBytes = defaultSessionTokenBytes
	}

	return auth.SessionConfig{
		TTL:        ttl,
		TokenBytes: tokenBytes,
	}
}

// LifecycleConfig converts AuthConfig into Lifecycle parameters.
func (c AuthConfig) LifecycleConfig() auth.LifecycleConfig {
	return auth.LifecycleConfig{RotateRefresh: c.Session.RotateRefresh}
}

// CookieConfig converts AuthConfig into cookie settings. Cookie lifetimes
// follow the token lifetimes.
func (c AuthConfig) CookieConfig() auth.CookieConfig {
	jwtCfg := c.JWTServiceConfig()
	return auth.CookieConfig{
		AccessName:  strings.TrimSpace(c.Cookies.AccessName),
		RefreshName: strings.TrimSpace(c.Cookies.RefreshName),
		Domain:      strings.TrimSpace(c.Cookies.Domain),
		Path:        strings.TrimSpace(c.Cookies.Path),
		AccessTTL:   jwtCfg.Access.TTL,
		RefreshTTL:  jwtCfg.Refresh.TTL,
	}.WithDefaults()
}
