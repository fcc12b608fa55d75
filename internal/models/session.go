package models

import "time"

// DefaultSessionName labels sessions created through the HTTP API.
const DefaultSessionName = "api"

// Session binds a user to an opaque, revocable token with an absolute expiry.
type Session struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	Name             string    `gorm:"not null;default:api" json:"name"`
	Token            string    `gorm:"uniqueIndex;not null" json:"-"`
	SessionIP        string    `gorm:"size:100;not null" json:"sessionIP"`
	SessionUserAgent string    `gorm:"size:200;not null" json:"-"`
	SessionOS        string    `gorm:"size:100;not null" json:"sessionOS"`
	ExpiresAt        time.Time `gorm:"index;not null" json:"-"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
