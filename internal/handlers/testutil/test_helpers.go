package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/api"
	"github.com/charlesng35/notesd/internal/app"
	iauth "github.com/charlesng35/notesd/internal/auth"
	sharedtestutil "github.com/charlesng35/notesd/internal/database/testutil"
	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/services"
	"github.com/charlesng35/notesd/internal/storage"
)

// BaseURL prefixes avatar URLs returned by the test router.
const BaseURL = "http://notes.test"

// EnvOption customises NewEnv.
type EnvOption func(*app.Config)

// WithRotateRefresh enables refresh token rotation.
func WithRotateRefresh() EnvOption {
	return func(cfg *app.Config) {
		cfg.Auth.Session.RotateRefresh = true
	}
}

// WithRateLimit enables the API rate limiter with the given budget.
func WithRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config) {
		cfg.RateLimit = app.RateLimitConfig{Enabled: true, Requests: requests, Window: window}
	}
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
// It keeps a browser-like cookie jar so consecutive requests share credentials.
type Env struct {
	T         *testing.T
	DB        *gorm.DB
	Router    *gin.Engine
	Config    *app.Config
	Lifecycle *iauth.Lifecycle
	Sessions  *iauth.SessionService
	Users     *services.UserService
	Avatars   *storage.FilesystemStore

	cookies map[string]*http.Cookie
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())
	publicDir := t.TempDir()

	cfg := &app.Config{
		Server: app.ServerConfig{
			BaseURL:   BaseURL,
			PublicDir: publicDir,
		},
		Auth: app.AuthConfig{
			Access:  app.TokenSettings{Secret: "test-suite-access-secret", TTL: time.Hour, Issuer: "test-suite"},
			Refresh: app.TokenSettings{Secret: "test-suite-refresh-secret", TTL: 24 * time.Hour},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tokens, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, cfg.Auth.SessionServiceConfig())
	require.NoError(t, err)

	lifecycle, err := iauth.NewLifecycle(db, tokens, sessions, cfg.Auth.LifecycleConfig())
	require.NoError(t, err)

	avatars, err := storage.NewFilesystemStore(cfg.AvatarDir(), BaseURL)
	require.NoError(t, err)

	users, err := services.NewUserService(db, sessions, services.UserServiceConfig{
		BaseURL: BaseURL,
		Avatars: avatars,
	})
	require.NoError(t, err)

	notes, err := services.NewNoteService(db)
	require.NoError(t, err)

	labels, err := services.NewLabelService(db)
	require.NoError(t, err)

	var rateStore middleware.RateStore
	if cfg.RateLimit.Enabled {
		memory := middleware.NewMemoryRateStore()
		t.Cleanup(memory.Stop)
		rateStore = memory
	}

	router, err := api.NewRouter(api.Dependencies{
		DB:        db,
		Config:    cfg,
		Lifecycle: lifecycle,
		Cookies:   middleware.NewCookieJar(cfg.Auth.CookieConfig()),
		Users:     users,
		Notes:     notes,
		Labels:    labels,
		RateStore: rateStore,
	})
	require.NoError(t, err)

	return &Env{
		T:         t,
		DB:        db,
		Router:    router,
		Config:    cfg,
		Lifecycle: lifecycle,
		Sessions:  sessions,
		Users:     users,
		Avatars:   avatars,
		cookies:   make(map[string]*http.Cookie),
	}
}

// Signup registers an account through the API and keeps the issued cookies.
func (e *Env) Signup(email, username, password string) *httptest.ResponseRecorder {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":           email,
		"username":        username,
		"password":        password,
		"confirmPassword": password,
	})
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())
	return w
}

// Login authenticates through the API and keeps the issued cookies.
func (e *Env) Login(email, password string) *httptest.ResponseRecorder {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
	return w
}

// Cookie returns the stored cookie with the given name, or nil.
func (e *Env) Cookie(name string) *http.Cookie {
	return e.cookies[name]
}

// SetCookie stores a cookie sent with subsequent requests.
func (e *Env) SetCookie(cookie *http.Cookie) {
	e.cookies[cookie.Name] = cookie
}

// DropCookie removes a cookie from the jar.
func (e *Env) DropCookie(name string) {
	delete(e.cookies, name)
}

// ClearCookies empties the jar.
func (e *Env) ClearCookies() {
	e.cookies = make(map[string]*http.Cookie)
}

// Request executes an HTTP request against the test router, applying JSON encoding and stored cookies automatically.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Do(req)
}

// Upload sends a multipart request with a single file field.
func (e *Env) Upload(method, path, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(e.T, err)
	_, err = part.Write(content)
	require.NoError(e.T, err)
	require.NoError(e.T, writer.Close())

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.Do(req)
}

// Do sends req with the stored cookies and records any cookies the response sets or clears.
func (e *Env) Do(req *http.Request) *httptest.ResponseRecorder {
	e.T.Helper()

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Firefox/120.0")
	}
	for _, cookie := range e.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	result := w.Result()
	defer result.Body.Close()
	for _, cookie := range result.Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(e.cookies, cookie.Name)
			continue
		}
		e.cookies[cookie.Name] = cookie
	}
	return w
}

// ResponseCookies returns the cookies set by a recorded response keyed by name.
func ResponseCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, cookie := range w.Result().Cookies() {
		out[cookie.Name] = cookie
	}
	return out
}

// APIResponse represents the success envelope returned by handlers.
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	User    json.RawMessage `json:"user"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}
