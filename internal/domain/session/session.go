package session

import (
	"context"
	"time"
)

// Session is the locally mirrored OAuth session for a shop. Sessions are
// written by the platform runtime during install/auth; this service only
// reads them for webhook context and deletes them on uninstall.
type Session struct {
	ID          string
	Shop        string
	AccessToken string
	Scope       *string
	ExpiresAt   *time.Time
	IsOnline    bool
}

// Repository defines persistence operations for shop sessions.
type Repository interface {
	// Save creates or replaces a session by its platform session id.
	Save(ctx context.Context, s *Session) error

	// FindByShop returns all sessions stored for a shop domain.
	FindByShop(ctx context.Context, shop string) ([]Session, error)

	// DeleteByShop removes every session for a shop domain. Deleting a shop
	// with no sessions is not an error; uninstall must stay idempotent.
	DeleteByShop(ctx context.Context, shop string) (int64, error)
}
