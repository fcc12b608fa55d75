package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, now func() time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Access:  TokenConfig{Secret: "access-secret", TTL: time.Hour},
		Refresh: TokenConfig{Secret: "refresh-secret", TTL: 30 * 24 * time.Hour},
		Issuer:  "notesd",
		Clock:   now,
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceRequiresSecrets(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.EqualError(t, err, "jwt: access secret must be provided")

	_, err = NewJWTService(JWTConfig{Access: TokenConfig{Secret: "a"}})
	require.EqualError(t, err, "jwt: refresh secret must be provided")
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, func() time.Time { return current })

	token, err := svc.IssueAccess("user-123", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccess(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.ID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "notesd", claims.Issuer)
	require.Equal(t, jwt.ClaimStrings{accessAudience}, claims.Audience)
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.NotBefore.Time.Equal(current))
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestIssueAndVerifyRefreshToken(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, func() time.Time { return current })

	token, err := svc.IssueRefresh("opaque-session-token")
	require.NoError(t, err)

	claims, err := svc.VerifyRefresh(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "opaque-session-token", claims.Token)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(30*24*time.Hour)))
}

func TestCodecsRejectEachOthersTokens(t *testing.T) {
	svc := newTestJWTService(t, time.Now)

	access, err := svc.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh("token")
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(context.Background(), access)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.VerifyAccess(context.Background(), refresh)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecsWithSharedSecretStillSeparated(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Access:  TokenConfig{Secret: "shared"},
		Refresh: TokenConfig{Secret: "shared"},
	})
	require.NoError(t, err)

	access, err := svc.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(context.Background(), access)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, func() time.Time { return current })

	token, err := svc.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	_, err = svc.VerifyAccess(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	svc := newTestJWTService(t, time.Now)

	other, err := NewJWTService(JWTConfig{
		Access:  TokenConfig{Secret: "other-access"},
		Refresh: TokenConfig{Secret: "other-refresh"},
		Issuer:  "notesd",
	})
	require.NoError(t, err)

	foreign, err := other.IssueAccess("user-1", "mallory")
	require.NoError(t, err)
	_, err = svc.VerifyAccess(context.Background(), foreign)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyAccess(context.Background(), "")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	svc := newTestJWTService(t, time.Now)

	other, err := NewJWTService(JWTConfig{
		Access:  TokenConfig{Secret: "access-secret"},
		Refresh: TokenConfig{Secret: "refresh-secret"},
		Issuer:  "someone-else",
	})
	require.NoError(t, err)

	token, err := other.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyContextHonoursCancellation(t *testing.T) {
	svc := newTestJWTService(t, time.Now)
	token, err := svc.IssueRefresh("token")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var claims RefreshClaims
	err = svc.Refresh().VerifyContext(ctx, token, &claims)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, svc.Refresh().VerifyContext(context.Background(), token, &claims))
	require.Equal(t, "token", claims.Token)

	_, err = svc.VerifyRefresh(ctx, token)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestDefaultTTLs(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Access:  TokenConfig{Secret: "a"},
		Refresh: TokenConfig{Secret: "r"},
	})
	require.NoError(t, err)
	require.Equal(t, DefaultAccessTokenTTL, svc.Access().TTL())
	require.Equal(t, DefaultRefreshTokenTTL, svc.Refresh().TTL())
}
