package auth

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/notesd/internal/cache"
	"github.com/charlesng35/notesd/internal/database/testutil"
	"github.com/charlesng35/notesd/internal/models"
)

func TestNewSessionServiceRequiresDB(t *testing.T) {
	_, err := NewSessionService(nil, SessionConfig{})
	require.Error(t, err)
}

func TestCreateSessionPersistsMetadata(t *testing.T) {
	db, svc, clock := setupSessionService(t, nil)
	user := createTestUser(t, db, "creator")
	ctx := context.Background()

	session, err := svc.Create(ctx, user.ID, SessionMetadata{
		IPAddress: "10.0.0.1 ",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	})
	require.NoError(t, err)

	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, models.DefaultSessionName, session.Name)
	require.Equal(t, "10.0.0.1", session.SessionIP)
	require.Equal(t, "Windows", session.SessionOS)
	require.True(t, session.ExpiresAt.Equal(clock.Now().Add(2*time.Hour)))

	raw, err := hex.DecodeString(session.Token)
	require.NoError(t, err)
	require.Len(t, raw, DefaultSessionTokenBytes)

	var reloaded models.Session
	require.NoError(t, db.Take(&reloaded, "id = ?", session.ID).Error)
	require.Equal(t, session.Token, reloaded.Token)
}

func TestCreateSessionTokensAreUnique(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	user := createTestUser(t, db, "unique")
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		session, err := svc.Create(ctx, user.ID, SessionMetadata{})
		require.NoError(t, err)
		_, dup := seen[session.Token]
		require.False(t, dup)
		seen[session.Token] = struct{}{}
	}
}

func TestCreateSessionRequiresUser(t *testing.T) {
	_, svc, _ := setupSessionService(t, nil)

	_, err := svc.Create(context.Background(), " ", SessionMetadata{})
	require.ErrorIs(t, err, ErrSessionCreate)
}

func TestCreateSessionWrapsStoreFailure(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	user := createTestUser(t, db, "broken")
	require.NoError(t, db.Migrator().DropTable(&models.Session{}))

	_, err := svc.Create(context.Background(), user.ID, SessionMetadata{})
	require.ErrorIs(t, err, ErrSessionCreate)
}

func TestFindByToken(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	user := createTestUser(t, db, "finder")
	ctx := context.Background()

	created, err := svc.Create(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)

	found, err := svc.FindByToken(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.FindByToken(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.FindByToken(ctx, "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDestroyByToken(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	user := createTestUser(t, db, "destroyer")
	ctx := context.Background()

	created, err := svc.Create(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)

	removed, err := svc.DestroyByToken(ctx, created.Token)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	removed, err = svc.DestroyByToken(ctx, created.Token)
	require.NoError(t, err)
	require.Zero(t, removed)

	_, err = svc.FindByToken(ctx, created.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDestroyByIDIsScopedToOwner(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "intruder")
	ctx := context.Background()

	session, err := svc.Create(ctx, owner.ID, SessionMetadata{})
	require.NoError(t, err)

	removed, err := svc.DestroyByID(ctx, other.ID, session.ID)
	require.NoError(t, err)
	require.Zero(t, removed)

	removed, err = svc.DestroyByID(ctx, owner.ID, session.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestDestroyOthersKeepsCurrent(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	user := createTestUser(t, db, "multi")
	ctx := context.Background()

	current, err := svc.Create(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, user.ID, SessionMetadata{})
		require.NoError(t, err)
	}

	removed, err := svc.DestroyOthers(ctx, user.ID, current.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, removed)

	sessions, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, current.ID, sessions[0].ID)
}

func TestListByUserOnlyReturnsOwnSessions(t *testing.T) {
	db, svc, _ := setupSessionService(t, nil)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	_, err := svc.Create(ctx, alice.ID, SessionMetadata{})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, SessionMetadata{})
	require.NoError(t, err)

	sessions, err := svc.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, alice.ID, sessions[0].UserID)
}

func TestPurgeExpired(t *testing.T) {
	db, svc, clock := setupSessionService(t, nil)
	user := createTestUser(t, db, "purge")
	ctx := context.Background()

	stale, err := svc.Create(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)
	clock.Advance(3 * time.Hour)
	fresh, err := svc.Create(ctx, user.ID, SessionMetadata{})
	require.NoError(t, err)

	removed, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = svc.FindByToken(ctx, stale.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.FindByToken(ctx, fresh.Token)
	require.NoError(t, err)
}

func TestSessionCacheInvalidatedOnDestroy(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewDatabaseStore(db)
	sessionCache := NewSessionCache(store)
	clock := newTestClock()
	clock.current = time.Now()

	svc, err := NewSessionService(db, SessionConfig{TTL: time.Hour, Clock: clock.Now, Cache: sessionCache})
	require.NoError(t, err)

	user := createTestUser(t, db, "cached")
	ctx := context.Background()

	created, err := svc.Create(ctx, user.ID, SessionMetadata{UserAgent: "curl/8"})
	require.NoError(t, err)

	cached, err := sessionCache.Get(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, created.ID, cached.ID)
	require.Equal(t, created.Token, cached.Token)
	require.True(t, cached.ExpiresAt.Equal(created.ExpiresAt))

	_, err = svc.DestroyByID(ctx, user.ID, created.ID)
	require.NoError(t, err)

	_, err = sessionCache.Get(ctx, created.Token)
	require.ErrorIs(t, err, errSessionCacheMiss)

	_, err = svc.FindByToken(ctx, created.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	require.Equal(t, "short", truncate("short", 200))

	agent := strings.Repeat("a", 199) + "é"
	cut := truncate(agent, 200)
	require.Equal(t, strings.Repeat("a", 199), cut)
	require.True(t, utf8.ValidString(cut))

	require.True(t, utf8.ValidString(truncate("agent\xff\xfe", 200)))
}

func TestCreateSessionStoresValidUserAgent(t *testing.T) {
	db, sessions, _ := setupSessionService(t, nil)
	user := createTestUser(t, db, "runes")

	agent := "Mozilla/5.0 (Windows NT 10.0) " + strings.Repeat("ß", 100)
	session, err := sessions.Create(context.Background(), user.ID, SessionMetadata{UserAgent: agent})
	require.NoError(t, err)
	require.LessOrEqual(t, len(session.SessionUserAgent), 200)
	require.True(t, utf8.ValidString(session.SessionUserAgent))
	require.Equal(t, "Windows", session.SessionOS)
}
