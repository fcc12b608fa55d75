package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/models"
	apperrors "github.com/charlesng35/notesd/pkg/errors"
	"github.com/charlesng35/notesd/pkg/logger"
	"github.com/charlesng35/notesd/pkg/metrics"
)

// LifecycleConfig toggles optional lifecycle behaviour.
type LifecycleConfig struct {
	// RotateRefresh replaces the session and its refresh token whenever a new
	// access token is minted.
	RotateRefresh bool
}

// Credentials are the raw cookie values presented by a client. Either may be empty.
type Credentials struct {
	Access  string
	Refresh string
}

// TokenPair is a freshly signed access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issued is the result of starting a new session for a user.
type Issued struct {
	Session *models.Session
	Tokens  TokenPair
}

// Outcome is the result of a successful Authenticate call. AccessToken is set
// only when the caller must write a new access cookie; RefreshToken only when
// the session was rotated.
type Outcome struct {
	Identity     Identity
	User         *models.User
	Session      *models.Session
	AccessToken  string
	RefreshToken string
}

// Lifecycle validates refresh credentials against the session store, renews
// access tokens and issues new sessions.
type Lifecycle struct {
	db       *gorm.DB
	tokens   *JWTService
	sessions *SessionService
	rotate   bool
	log      *zap.Logger
}

// NewLifecycle wires the lifecycle controller.
func NewLifecycle(db *gorm.DB, tokens *JWTService, sessions *SessionService, cfg LifecycleConfig) (*Lifecycle, error) {
	if db == nil {
		return nil, errors.New("lifecycle: db is required")
	}
	if tokens == nil {
		return nil, errors.New("lifecycle: jwt service is required")
	}
	if sessions == nil {
		return nil, errors.New("lifecycle: session service is required")
	}
	return &Lifecycle{
		db:       db,
		tokens:   tokens,
		sessions: sessions,
		rotate:   cfg.RotateRefresh,
		log:      logger.WithModule("lifecycle"),
	}, nil
}

// Tokens exposes the token service used by the lifecycle.
func (l *Lifecycle) Tokens() *JWTService { return l.tokens }

// Sessions exposes the session accessor used by the lifecycle.
func (l *Lifecycle) Sessions() *SessionService { return l.sessions }

// Issue creates a session for user and signs both tokens.
func (l *Lifecycle) Issue(ctx context.Context, user *models.User, meta SessionMetadata, reason string) (*Issued, error) {
	if user == nil || user.ID == "" {
		return nil, errors.New("lifecycle: user is required")
	}

	session, err := l.sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	pair, err := l.signPair(user, session)
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	metrics.SessionsIssued.WithLabelValues(reason).Inc()
	return &Issued{Session: session, Tokens: pair}, nil
}

// Authenticate resolves the refresh credential to a live session and user.
// Failures are ErrNotLoggedIn, or ErrInternalServer when the store fails.
func (l *Lifecycle) Authenticate(ctx context.Context, creds Credentials, meta SessionMetadata) (*Outcome, error) {
	if strings.TrimSpace(creds.Refresh) == "" {
		return nil, l.reject("missing refresh credential", nil)
	}

	refresh, err := l.tokens.VerifyRefresh(ctx, creds.Refresh)
	if err != nil && !errors.Is(err, ErrTokenInvalid) {
		return nil, l.fail(err)
	}
	if err != nil {
		return nil, l.reject("refresh credential rejected", err)
	}

	session, err := l.sessions.FindByToken(ctx, refresh.Token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, l.reject("session not found", nil)
	}
	if err != nil {
		return nil, l.fail(err)
	}

	if session.IsExpired(l.sessions.now()) {
		return nil, l.reject("session expired", nil)
	}

	var user models.User
	err = l.db.WithContext(ctx).Take(&user, "id = ?", session.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, l.reject("session user missing", nil)
	}
	if err != nil {
		return nil, l.fail(fmt.Errorf("lifecycle: load user: %w", err))
	}

	outcome := &Outcome{User: &user, Session: session}

	if !l.accessStillValid(ctx, creds.Access, user.ID) {
		if l.rotate {
			if err := l.rotateSession(ctx, outcome, meta); err != nil {
				return nil, l.fail(err)
			}
		}
		access, err := l.tokens.IssueAccess(user.ID, user.Username)
		if err != nil {
			return nil, l.fail(err)
		}
		outcome.AccessToken = access
		metrics.SessionChecks.WithLabelValues("renewed").Inc()
	} else {
		metrics.SessionChecks.WithLabelValues("authenticated").Inc()
	}

	outcome.Identity = Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		SessionID: outcome.Session.ID,
	}
	return outcome, nil
}

// Revoke destroys the session referenced by a refresh credential. Undecodable
// credentials are ignored so that logout stays idempotent.
func (l *Lifecycle) Revoke(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	claims, err := l.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil && !errors.Is(err, ErrTokenInvalid) {
		return apperrors.ErrInternalServer.WithInternal(err)
	}
	if err != nil {
		l.log.Debug("logout with undecodable refresh credential", zap.Error(err))
		return nil
	}

	removed, err := l.sessions.DestroyByToken(ctx, claims.Token)
	if err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}
	if removed > 0 {
		metrics.SessionsRevoked.WithLabelValues("logout").Add(float64(removed))
	}
	return nil
}

func (l *Lifecycle) accessStillValid(ctx context.Context, access, userID string) bool {
	if strings.TrimSpace(access) == "" {
		return false
	}
	claims, err := l.tokens.VerifyAccess(ctx, access)
	if err != nil {
		return false
	}
	return claims.ID == userID
}

func (l *Lifecycle) rotateSession(ctx context.Context, outcome *Outcome, meta SessionMetadata) error {
	fresh, err := l.sessions.Create(ctx, outcome.User.ID, meta)
	if err != nil {
		return err
	}
	refresh, err := l.tokens.IssueRefresh(fresh.Token)
	if err != nil {
		return err
	}
	if _, err := l.sessions.DestroyByToken(ctx, outcome.Session.Token); err != nil {
		return err
	}

	metrics.SessionsIssued.WithLabelValues("rotation").Inc()
	outcome.Session = fresh
	outcome.RefreshToken = refresh
	return nil
}

func (l *Lifecycle) signPair(user *models.User, session *models.Session) (TokenPair, error) {
	access, err := l.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := l.tokens.IssueRefresh(session.Token)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (l *Lifecycle) reject(reason string, cause error) error {
	metrics.SessionChecks.WithLabelValues("rejected").Inc()
	fields := []zap.Field{zap.String("reason", reason)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	l.log.Debug("session rejected", fields...)
	return apperrors.ErrNotLoggedIn
}

func (l *Lifecycle) fail(err error) error {
	metrics.SessionChecks.WithLabelValues("error").Inc()
	return apperrors.ErrInternalServer.WithInternal(err)
}
