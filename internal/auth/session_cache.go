package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/notesd/internal/cache"
	"github.com/charlesng35/notesd/internal/models"
)

const sessionCacheKeyPrefix = "auth:sessions:token:"

var errSessionCacheMiss = errors.New("session cache miss")

// SessionCache represents a cache backend for session rows keyed by opaque token.
type SessionCache interface {
	Get(ctx context.Context, token string) (*models.Session, error)
	Set(ctx context.Context, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// NewSessionCache wraps a shared cache store (Redis or database) inside a SessionCache.
func NewSessionCache(store cache.Store) SessionCache {
	if store == nil {
		return nil
	}
	return &sessionStoreCache{store: store}
}

type sessionStoreCache struct {
	store cache.Store
}

// cachedSession mirrors the columns required to validate a session. The model
// hides several of them from JSON so it cannot be serialised directly.
type cachedSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	OS        string    `json:"os"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *sessionStoreCache) Get(ctx context.Context, token string) (*models.Session, error) {
	key := cacheKey(token)
	if key == "" {
		return nil, errSessionCacheMiss
	}

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionCacheMiss
	}

	var record cachedSession
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("session cache: decode: %w", err)
	}

	session := &models.Session{
		UserID:           record.UserID,
		Name:             record.Name,
		Token:            record.Token,
		SessionIP:        record.IP,
		SessionUserAgent: record.UserAgent,
		SessionOS:        record.OS,
		ExpiresAt:        record.ExpiresAt,
	}
	session.ID = record.ID
	session.CreatedAt = record.CreatedAt
	session.UpdatedAt = record.UpdatedAt
	return session, nil
}

func (c *sessionStoreCache) Set(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if session == nil {
		return errors.New("session cache: session is nil")
	}
	key := cacheKey(session.Token)
	if key == "" {
		return errors.New("session cache: token missing")
	}

	payload, err := json.Marshal(cachedSession{
		ID:        session.ID,
		UserID:    session.UserID,
		Name:      session.Name,
		Token:     session.Token,
		IP:        session.SessionIP,
		UserAgent: session.SessionUserAgent,
		OS:        session.SessionOS,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("session cache: marshal: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	return c.store.Set(ctx, key, payload, ttl)
}

func (c *sessionStoreCache) Delete(ctx context.Context, token string) error {
	key := cacheKey(token)
	if key == "" {
		return nil
	}
	return c.store.Delete(ctx, key)
}

func cacheKey(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return sessionCacheKeyPrefix + token
}
