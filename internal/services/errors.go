package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/notesd/pkg/errors"
)

var (
	// ErrEmailTaken is returned when signing up with an email already in use.
	ErrEmailTaken = apperrors.NewValidation("Email already exists")
	// ErrUsernameTaken is returned when a username is already in use.
	ErrUsernameTaken = apperrors.NewValidation("Username already exists")
	// ErrAccountExists covers uniqueness violations detected only by the store.
	ErrAccountExists = apperrors.NewValidation("Email or username already exists")
	// ErrCurrentPasswordMismatch is returned when a password change presents the wrong current password.
	ErrCurrentPasswordMismatch = apperrors.NewValidation("Current password does not match")
	// ErrUserNotFound is returned when the acting user disappeared mid request.
	ErrUserNotFound = apperrors.NewNotFound("User not found")
	// ErrNoteNotFound is returned for notes that do not exist or belong to someone else.
	ErrNoteNotFound = apperrors.NewNotFound("Note does not exist")
	// ErrLabelNotFound is returned for labels that do not exist or belong to someone else.
	ErrLabelNotFound = apperrors.NewNotFound("Label does not exist")
	// ErrSessionNotFound is returned when revoking a session that does not exist.
	ErrSessionNotFound = apperrors.NewNotFound("Session does not exist")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate")
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func internal(err error) error {
	return apperrors.ErrInternalServer.WithInternal(err)
}
