package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/models"
	apperrors "github.com/charlesng35/notesd/pkg/errors"
)

type lifecycleFixture struct {
	db        *gorm.DB
	clock     *testClock
	tokens    *JWTService
	sessions  *SessionService
	lifecycle *Lifecycle
}

func setupLifecycle(t *testing.T, cfg LifecycleConfig) *lifecycleFixture {
	t.Helper()

	db, sessions, clock := setupSessionService(t, nil)
	tokens, err := NewJWTService(JWTConfig{
		Access:  TokenConfig{Secret: "access-secret", TTL: time.Hour},
		Refresh: TokenConfig{Secret: "refresh-secret", TTL: 30 * 24 * time.Hour},
		Clock:   clock.Now,
	})
	require.NoError(t, err)

	lifecycle, err := NewLifecycle(db, tokens, sessions, cfg)
	require.NoError(t, err)

	return &lifecycleFixture{db: db, clock: clock, tokens: tokens, sessions: sessions, lifecycle: lifecycle}
}

func TestNewLifecycleRequiresDependencies(t *testing.T) {
	_, err := NewLifecycle(nil, nil, nil, LifecycleConfig{})
	require.Error(t, err)
}

func TestIssueCreatesSessionAndTokens(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "issuer")

	issued, err := fx.lifecycle.Issue(context.Background(), user, SessionMetadata{IPAddress: "127.0.0.1"}, "login")
	require.NoError(t, err)
	require.NotEmpty(t, issued.Tokens.AccessToken)
	require.NotEmpty(t, issued.Tokens.RefreshToken)

	refresh, err := fx.tokens.VerifyRefresh(context.Background(), issued.Tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, issued.Session.Token, refresh.Token)

	access, err := fx.tokens.VerifyAccess(context.Background(), issued.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, access.ID)
	require.Equal(t, user.Username, access.Username)
}

func TestAuthenticateWithoutRefreshFails(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "norefresh")

	access, err := fx.tokens.IssueAccess(user.ID, user.Username)
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(context.Background(), Credentials{Access: access}, SessionMetadata{})
	require.Nil(t, outcome)
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
	require.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthenticateRejectsForgedRefresh(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})

	_, err := fx.lifecycle.Authenticate(context.Background(), Credentials{Refresh: "garbage"}, SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)

	// A signed refresh token referencing no session is rejected as well.
	orphan, err := fx.tokens.IssueRefresh("no-such-session")
	require.NoError(t, err)
	_, err = fx.lifecycle.Authenticate(context.Background(), Credentials{Refresh: orphan}, SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestAuthenticateRejectsExpiredSessionWithValidSignature(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "expired")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	// The refresh token stays valid for 30 days; the session only for 2 hours.
	fx.clock.Advance(3 * time.Hour)
	_, err = fx.tokens.VerifyRefresh(context.Background(), issued.Tokens.RefreshToken)
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.Nil(t, outcome)
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "ghost")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	require.NoError(t, fx.db.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err = fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestAuthenticateRenewsMissingAccessToken(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "renew")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.NoError(t, err)
	require.NotEmpty(t, outcome.AccessToken)
	require.Empty(t, outcome.RefreshToken)
	require.Equal(t, user.ID, outcome.Identity.UserID)
	require.Equal(t, user.Username, outcome.Identity.Username)
	require.Equal(t, user.Email, outcome.Identity.Email)
	require.Equal(t, issued.Session.ID, outcome.Identity.SessionID)

	claims, err := fx.tokens.VerifyAccess(context.Background(), outcome.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.ID)
}

func TestAuthenticateKeepsValidAccessToken(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "keeper")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(ctx, Credentials{
		Access:  issued.Tokens.AccessToken,
		Refresh: issued.Tokens.RefreshToken,
	}, SessionMetadata{})
	require.NoError(t, err)
	require.Empty(t, outcome.AccessToken)
	require.Equal(t, user.ID, outcome.Identity.UserID)
}

func TestAuthenticateReplacesInvalidAccessToken(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "replacer")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(ctx, Credentials{
		Access:  "tampered",
		Refresh: issued.Tokens.RefreshToken,
	}, SessionMetadata{})
	require.NoError(t, err)
	require.NotEmpty(t, outcome.AccessToken)

	// An expired access token is replaced too.
	fx.clock.Advance(90 * time.Minute)
	outcome, err = fx.lifecycle.Authenticate(ctx, Credentials{
		Access:  issued.Tokens.AccessToken,
		Refresh: issued.Tokens.RefreshToken,
	}, SessionMetadata{})
	require.NoError(t, err)
	require.NotEmpty(t, outcome.AccessToken)
}

func TestAuthenticateIgnoresAccessClaimsForIdentity(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	alice := createTestUser(t, fx.db, "alice")
	bob := createTestUser(t, fx.db, "bob")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, alice, SessionMetadata{}, "login")
	require.NoError(t, err)
	bobAccess, err := fx.tokens.IssueAccess(bob.ID, bob.Username)
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(ctx, Credentials{Access: bobAccess, Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.NoError(t, err)
	require.Equal(t, alice.ID, outcome.Identity.UserID)
	require.NotEmpty(t, outcome.AccessToken)
}

func TestAuthenticateRotatesWhenEnabled(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{RotateRefresh: true})
	user := createTestUser(t, fx.db, "rotator")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	outcome, err := fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.NoError(t, err)
	require.NotEmpty(t, outcome.AccessToken)
	require.NotEmpty(t, outcome.RefreshToken)
	require.NotEqual(t, issued.Session.ID, outcome.Identity.SessionID)

	_, err = fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)

	_, err = fx.lifecycle.Authenticate(ctx, Credentials{Refresh: outcome.RefreshToken}, SessionMetadata{})
	require.NoError(t, err)
}

func TestAuthenticateSurfacesStoreFailureAsInternal(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "storefail")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	require.NoError(t, fx.db.Migrator().DropTable(&models.Session{}))

	_, err = fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.Error(t, err)
	require.False(t, apperrors.IsUnauthorized(err))
	require.Equal(t, apperrors.KindInternal, apperrors.FromError(err).Kind)
}

func TestAuthenticateStopsOnCancelledContext(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "cancelled")

	issued, err := fx.lifecycle.Issue(context.Background(), user, SessionMetadata{}, "login")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, apperrors.IsUnauthorized(err))

	err = fx.lifecycle.Revoke(ctx, issued.Tokens.RefreshToken)
	require.ErrorIs(t, err, context.Canceled)

	_, err = fx.lifecycle.Authenticate(context.Background(), Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.NoError(t, err)
}

func TestRevokeIsIdempotent(t *testing.T) {
	fx := setupLifecycle(t, LifecycleConfig{})
	user := createTestUser(t, fx.db, "revoker")
	ctx := context.Background()

	issued, err := fx.lifecycle.Issue(ctx, user, SessionMetadata{}, "login")
	require.NoError(t, err)

	require.NoError(t, fx.lifecycle.Revoke(ctx, issued.Tokens.RefreshToken))
	require.NoError(t, fx.lifecycle.Revoke(ctx, issued.Tokens.RefreshToken))
	require.NoError(t, fx.lifecycle.Revoke(ctx, "garbage"))
	require.NoError(t, fx.lifecycle.Revoke(ctx, ""))

	_, err = fx.lifecycle.Authenticate(ctx, Credentials{Refresh: issued.Tokens.RefreshToken}, SessionMetadata{})
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}
