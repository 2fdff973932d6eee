package models

import (
	"time"

	"github.com/shopsync/backend/internal/domain/session"
)

// SessionModel is the persistence model for platform OAuth sessions.
// The primary key is the platform-issued session id, not a surrogate.
type SessionModel struct {
	ID          string  `gorm:"primary_key"`
	Shop        string  `gorm:"not null;index"`
	AccessToken string  `gorm:"not null"`
	Scope       *string `gorm:"type:text"`
	ExpiresAt   *time.Time
	IsOnline    bool `gorm:"not null;default:false"`
}

// TableName specifies the table name for SessionModel
func (SessionModel) TableName() string {
	return "sessions"
}

// ToDomain converts SessionModel to a domain Session
func (m *SessionModel) ToDomain() *session.Session {
	return &session.Session{
		ID:          m.ID,
		Shop:        m.Shop,
		AccessToken: m.AccessToken,
		Scope:       m.Scope,
		ExpiresAt:   m.ExpiresAt,
		IsOnline:    m.IsOnline,
	}
}

// SessionModelFromDomain converts a domain Session to SessionModel
func SessionModelFromDomain(s *session.Session) *SessionModel {
	return &SessionModel{
		ID:          s.ID,
		Shop:        s.Shop,
		AccessToken: s.AccessToken,
		Scope:       s.Scope,
		ExpiresAt:   s.ExpiresAt,
		IsOnline:    s.IsOnline,
	}
}
