package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL defines the fallback validity period for access tokens.
	DefaultAccessTokenTTL = time.Hour
	// DefaultRefreshTokenTTL defines the fallback validity period for refresh tokens and sessions.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	accessAudience  = "access"
	refreshAudience = "refresh"
)

// ErrTokenInvalid is returned for any signature, expiry or structure failure.
// The jwt cause is wrapped for logging.
var ErrTokenInvalid = errors.New("token: invalid")

// TokenConfig configures a single codec.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Access  TokenConfig
	Refresh TokenConfig
	Issuer  string
	Clock   func() time.Time
}

// AccessClaims is the payload of a short lived access token.
type AccessClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Token references a session row.
type RefreshClaims struct {
	Token string `json:"token"`
	jwt.RegisteredClaims
}

type registeredClaims interface {
	jwt.Claims
	registered() *jwt.RegisteredClaims
}

func (c *AccessClaims) registered() *jwt.RegisteredClaims  { return &c.RegisteredClaims }
func (c *RefreshClaims) registered() *jwt.RegisteredClaims { return &c.RegisteredClaims }

// TokenCodec signs and verifies HS256 tokens for one token kind.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func newTokenCodec(cfg TokenConfig, fallbackTTL time.Duration, issuer, audience string, now func() time.Time) (*TokenCodec, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt: %s secret must be provided", audience)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = fallbackTTL
	}
	return &TokenCodec{
		secret:   []byte(cfg.Secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      now,
	}, nil
}

// TTL returns the lifetime applied to issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue stamps the registered claims and signs the token.
func (c *TokenCodec) Issue(claims registeredClaims) (string, error) {
	now := c.now()
	reg := claims.registered()
	reg.Issuer = c.issuer
	reg.Audience = jwt.ClaimStrings{c.audience}
	reg.IssuedAt = jwt.NewNumericDate(now)
	reg.NotBefore = jwt.NewNumericDate(now)
	reg.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString into claims, failing with ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString string, claims registeredClaims) error {
	if strings.TrimSpace(tokenString) == "" {
		return ErrTokenInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return nil
}

// VerifyContext is Verify for callers that may have been cancelled.
func (c *TokenCodec) VerifyContext(ctx context.Context, tokenString string, claims registeredClaims) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Verify(tokenString, claims)
}

// JWTService holds the two independent codecs used for access and refresh tokens.
type JWTService struct {
	access  *TokenCodec
	refresh *TokenCodec
}

// NewJWTService constructs a JWTService instance when provided with the required configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	access, err := newTokenCodec(cfg.Access, DefaultAccessTokenTTL, cfg.Issuer, accessAudience, now)
	if err != nil {
		return nil, err
	}
	refresh, err := newTokenCodec(cfg.Refresh, DefaultRefreshTokenTTL, cfg.Issuer, refreshAudience, now)
	if err != nil {
		return nil, err
	}

	return &JWTService{access: access, refresh: refresh}, nil
}

// Access exposes the access token codec.
func (s *JWTService) Access() *TokenCodec { return s.access }

// Refresh exposes the refresh token codec.
func (s *JWTService) Refresh() *TokenCodec { return s.refresh }

// IssueAccess signs an access token for the user.
func (s *JWTService) IssueAccess(userID, username string) (string, error) {
	if userID == "" {
		return "", errors.New("jwt: user id is required")
	}
	return s.access.Issue(&AccessClaims{
		ID:               userID,
		Username:         username,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	})
}

// VerifyAccess validates an access token and returns its claims.
func (s *JWTService) VerifyAccess(ctx context.Context, tokenString string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.access.VerifyContext(ctx, tokenString, &claims); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrTokenInvalid)
	}
	return &claims, nil
}

// IssueRefresh signs a refresh token referencing an opaque session token.
func (s *JWTService) IssueRefresh(sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", errors.New("jwt: session token is required")
	}
	return s.refresh.Issue(&RefreshClaims{Token: sessionToken})
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *JWTService) VerifyRefresh(ctx context.Context, tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.refresh.VerifyContext(ctx, tokenString, &claims); err != nil {
		return nil, err
	}
	if claims.Token == "" {
		return nil, fmt.Errorf("%w: missing token claim", ErrTokenInvalid)
	}
	return &claims, nil
}
