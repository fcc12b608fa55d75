package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/models"
	"github.com/charlesng35/notesd/pkg/crypto"
	"github.com/charlesng35/notesd/pkg/logger"
)

// DefaultSessionTokenBytes is the amount of randomness behind an opaque session token.
const DefaultSessionTokenBytes = 32

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	TTL        time.Duration
	TokenBytes int
	Clock      func() time.Time
	Cache      SessionCache
}

// SessionMetadata captures contextual information about the client.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

var (
	// ErrSessionNotFound indicates that no session matches the provided token or identifier.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionCreate wraps any store failure while persisting a new session.
	ErrSessionCreate = errors.New("session: create failed")
)

// SessionService is the accessor for persisted sessions.
type SessionService struct {
	db       *gorm.DB
	ttl      time.Duration
	tokenLen int
	now      func() time.Time
	cache    SessionCache
	log      *zap.Logger
}

// NewSessionService constructs a session accessor backed by the provided database.
func NewSessionService(db *gorm.DB, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	length := cfg.TokenBytes
	if length <= 0 {
		length = DefaultSessionTokenBytes
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:       db,
		ttl:      ttl,
		tokenLen: length,
		now:      clock,
		cache:    cfg.Cache,
		log:      logger.WithModule("sessions"),
	}, nil
}

// TTL returns the absolute lifetime given to new sessions.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create persists a new session for userID with a fresh opaque token.
func (s *SessionService) Create(ctx context.Context, userID string, meta SessionMetadata) (*models.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrSessionCreate)
	}

	token, err := crypto.GenerateHexToken(s.tokenLen)
	if err != nil {
		return nil, fmt.Errorf("%w: generate token: %w", ErrSessionCreate, err)
	}

	userAgent := strings.TrimSpace(meta.UserAgent)
	session := &models.Session{
		UserID:           userID,
		Name:             models.DefaultSessionName,
		Token:            token,
		SessionIP:        strings.TrimSpace(meta.IPAddress),
		SessionUserAgent: truncate(userAgent, 200),
		SessionOS:        ParseOS(userAgent),
		ExpiresAt:        s.now().Add(s.ttl),
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCreate, err)
	}

	s.cacheSet(ctx, session)
	return session, nil
}

// FindByToken resolves a session by its opaque token. Expiry is not checked here.
func (s *SessionService) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, token)
		switch {
		case err == nil && cached != nil:
			return cached, nil
		case err != nil && !errors.Is(err, errSessionCacheMiss):
			s.log.Warn("session cache read failed", zap.Error(err))
		}
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	s.cacheSet(ctx, &session)
	return &session, nil
}

// DestroyByToken deletes the session holding token and returns the number removed.
func (s *SessionService) DestroyByToken(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: destroy session: %w", result.Error)
	}

	s.cacheDelete(ctx, token)
	return result.RowsAffected, nil
}

// DestroyByID deletes a session owned by userID.
func (s *SessionService) DestroyByID(ctx context.Context, userID, id string) (int64, error) {
	return s.destroyWhere(ctx, s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id))
}

// DestroyOthers deletes every session of userID except keepID.
func (s *SessionService) DestroyOthers(ctx context.Context, userID, keepID string) (int64, error) {
	return s.destroyWhere(ctx, s.db.WithContext(ctx).Where("user_id = ? AND id <> ?", userID, keepID))
}

// DestroyAllForUser deletes every session of userID.
func (s *SessionService) DestroyAllForUser(ctx context.Context, userID string) (int64, error) {
	return s.destroyWhere(ctx, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

// ListByUser returns the sessions of userID, newest first.
func (s *SessionService) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("session service: list sessions: %w", err)
	}
	return sessions, nil
}

// PurgeExpired hard deletes sessions past their expiry. Validity never depends on it.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.destroyWhere(ctx, s.db.WithContext(ctx).Where("expires_at < ?", s.now()))
}

func (s *SessionService) destroyWhere(ctx context.Context, scope *gorm.DB) (int64, error) {
	var tokens []string
	if s.cache != nil {
		if err := scope.Session(&gorm.Session{}).Model(&models.Session{}).Pluck("token", &tokens).Error; err != nil {
			return 0, fmt.Errorf("session service: collect tokens: %w", err)
		}
	}

	result := scope.Session(&gorm.Session{}).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: destroy sessions: %w", result.Error)
	}

	for _, token := range tokens {
		s.cacheDelete(ctx, token)
	}
	return result.RowsAffected, nil
}

func (s *SessionService) cacheSet(ctx context.Context, session *models.Session) {
	if s.cache == nil {
		return
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, session, ttl); err != nil {
		s.log.Warn("session cache write failed", zap.Error(err))
	}
}

func (s *SessionService) cacheDelete(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		s.log.Warn("session cache delete failed", zap.Error(err))
	}
}

// truncate cuts value to at most max bytes without splitting a rune.
func truncate(value string, max int) string {
	value = strings.ToValidUTF8(value, "\uFFFD")
	if len(value) <= max {
		return value
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
