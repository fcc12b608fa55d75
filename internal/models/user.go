package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/notesd/pkg/crypto"
)

// DefaultAvatar is the file name assigned to users that never uploaded an avatar.
const DefaultAvatar = "default.jpg"

// User is an account owning sessions, notes and labels. Deleting a user is a
// soft delete; gorm hides soft-deleted rows from every default query.
type User struct {
	BaseModel

	Email        string `gorm:"uniqueIndex;size:200;not null" json:"email"`
	Username     string `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password     string `json:"-"`
	PasswordSalt string `json:"-"`

	// PlainPassword is never persisted. When set, BeforeSave hashes it into
	// Password and PasswordSalt and clears it.
	PlainPassword string `gorm:"-" json:"-"`

	Avatar                string     `gorm:"not null;default:default.jpg" json:"avatar"`
	IsEnabled             bool       `gorm:"not null;default:true" json:"-"`
	PasswordLastUpdatedAt *time.Time `json:"-"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
	Notes    []Note    `gorm:"foreignKey:UserID" json:"-"`
	Labels   []Label   `gorm:"foreignKey:UserID" json:"-"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeSave hashes a pending plaintext password so the store never receives it.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.PlainPassword == "" {
		return nil
	}

	hash, err := crypto.HashPassword(u.PlainPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	u.Password = hash
	u.PasswordSalt = crypto.SaltFromHash(hash)
	u.PasswordLastUpdatedAt = &now
	u.PlainPassword = ""
	return nil
}

// CheckPassword reports whether candidate matches the stored digest.
func (u *User) CheckPassword(candidate string) bool {
	if u == nil || u.Password == "" {
		return false
	}
	return crypto.VerifyPassword(u.Password, candidate)
}
