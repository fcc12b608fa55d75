package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/charlesng35/notesd/internal/auth"
	"github.com/charlesng35/notesd/internal/models"
	"github.com/charlesng35/notesd/internal/storage"
	"github.com/charlesng35/notesd/pkg/crypto"
	apperrors "github.com/charlesng35/notesd/pkg/errors"
	"github.com/charlesng35/notesd/pkg/logger"
	"github.com/charlesng35/notesd/pkg/metrics"
)

// unknownAccountHash is compared against on logins for unknown emails so
// they cost the same bcrypt work as a wrong password.
var unknownAccountHash = sync.OnceValue(func() string {
	hash, err := crypto.HashPassword("unknown-account")
	if err != nil {
		return ""
	}
	return hash
})

// SignupInput carries the fields accepted when registering an account.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

// PublicUser is the only user representation returned to clients.
type PublicUser struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UserServiceConfig configures a UserService.
type UserServiceConfig struct {
	// BaseURL prefixes locally served avatar paths.
	BaseURL string
	// Avatars stores uploaded avatars. Nil disables uploads.
	Avatars storage.AvatarStore
	// Images converts uploads to the stored avatar format.
	Images *AvatarProcessor
	// Clock overrides time.Now, used for avatar file names.
	Clock func() time.Time
}

// UserService manages accounts: signup, credential checks and profile changes.
type UserService struct {
	db       *gorm.DB
	sessions *iauth.SessionService
	avatars  storage.AvatarStore
	images   *AvatarProcessor
	baseURL  string
	now      func() time.Time
	log      *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, sessions *iauth.SessionService, cfg UserServiceConfig) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if sessions == nil {
		return nil, errors.New("user service: session service is required")
	}
	images := cfg.Images
	if images == nil {
		images = NewAvatarProcessor(AvatarOptions{})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &UserService{
		db:       db,
		sessions: sessions,
		avatars:  cfg.Avatars,
		images:   images,
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		now:      clock,
		log:      logger.WithModule("users"),
	}, nil
}

// Signup creates an account. The password is hashed by the model save hook.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	if taken, err := s.exists(ctx, "email = ?", email); err != nil {
		return nil, internal(err)
	} else if taken {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		return nil, ErrEmailTaken
	}
	if taken, err := s.exists(ctx, "username = ?", username); err != nil {
		return nil, internal(err)
	} else if taken {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		return nil, ErrUsernameTaken
	}

	user := &models.User{
		Email:         email,
		Username:      username,
		PlainPassword: input.Password,
		Avatar:        models.DefaultAvatar,
		IsEnabled:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		if isUniqueConstraintError(err) {
			return nil, ErrAccountExists
		}
		return nil, internal(fmt.Errorf("user service: create user: %w", err))
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	return user, nil
}

// Authenticate checks login credentials. Unknown emails and wrong passwords
// are indistinguishable; a disabled account is reported only after the
// password matched.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		crypto.VerifyPassword(unknownAccountHash(), password)
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, internal(fmt.Errorf("user service: load user: %w", err))
	}

	if !user.CheckPassword(password) {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsEnabled {
		metrics.AuthAttempts.WithLabelValues("login", "disabled").Inc()
		return nil, apperrors.ErrAccountDisabled
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return &user, nil
}

// FindByID loads a live user.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, internal(fmt.Errorf("user service: load user: %w", err))
	}
	return &user, nil
}

// UpdateUsername renames a user, keeping usernames unique.
func (s *UserService) UpdateUsername(ctx context.Context, userID, username string) (*models.User, error) {
	ctx = ensureContext(ctx)
	username = strings.TrimSpace(username)

	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Username == username {
		return user, nil
	}

	if taken, err := s.exists(ctx, "username = ? AND id <> ?", username, userID); err != nil {
		return nil, internal(err)
	} else if taken {
		return nil, ErrUsernameTaken
	}

	err = s.db.WithContext(ctx).Model(user).Update("username", username).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, internal(fmt.Errorf("user service: update username: %w", err))
	}
	user.Username = username
	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	ctx = ensureContext(ctx)

	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return ErrCurrentPasswordMismatch
	}

	user.PlainPassword = next
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return internal(fmt.Errorf("user service: update password: %w", err))
	}
	return nil
}

// UpdateAvatar converts the upload, stores it and points the user at it. The
// previous custom avatar is removed on a best-effort basis.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, upload io.Reader) (*models.User, error) {
	ctx = ensureContext(ctx)
	if s.avatars == nil {
		return nil, internal(errors.New("user service: avatar storage is not configured"))
	}

	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.images.Process(upload)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("user-%s-%d.jpeg", user.Username, s.now().UnixMilli())
	if err := s.avatars.Put(ctx, name, bytes.NewReader(data), int64(len(data)), AvatarContentType); err != nil {
		return nil, internal(err)
	}

	previous := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", name).Error; err != nil {
		_ = s.avatars.Delete(ctx, name)
		return nil, internal(fmt.Errorf("user service: update avatar: %w", err))
	}
	user.Avatar = name

	if previous != "" && previous != models.DefaultAvatar && previous != name {
		if err := s.avatars.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to remove previous avatar", zap.String("avatar", previous), zap.Error(err))
		}
	}
	return user, nil
}

// Delete soft-deletes the account and revokes every session it owns.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return internal(fmt.Errorf("user service: delete user: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	removed, err := s.sessions.DestroyAllForUser(ctx, userID)
	if err != nil {
		return internal(err)
	}
	metrics.SessionsRevoked.WithLabelValues("account_deleted").Add(float64(removed))
	return nil
}

// Public projects a user to the fields clients may see.
func (s *UserService) Public(user *models.User) PublicUser {
	if user == nil {
		return PublicUser{}
	}
	return PublicUser{
		Email:    user.Email,
		Username: user.Username,
		Avatar:   s.AvatarURL(user.Avatar),
	}
}

// AvatarURL resolves a stored avatar file name to its public address. The
// default avatar always ships with the static files.
func (s *UserService) AvatarURL(file string) string {
	if file == "" {
		file = models.DefaultAvatar
	}
	if file == models.DefaultAvatar || s.avatars == nil {
		return s.baseURL + storage.PublicAvatarPath + file
	}
	return s.avatars.URL(file)
}

// exists includes soft-deleted rows because their unique indexes still apply.
func (s *UserService) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where(query, args...).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("user service: check uniqueness: %w", err)
	}
	return count > 0, nil
}
