package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

var (
	_ userports.SessionStore  = (*SessionStore)(nil)
	_ userports.SessionPurger = (*SessionStore)(nil)
)

// SessionStore persists refresh sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	UserID    int64     `gorm:"column:user_id;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Save inserts a session keyed by the refresh token ID.
func (s *SessionStore) Save(ctx context.Context, session userports.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" || session.UserID <= 0 {
		return errors.New("session id and user id are required")
	}
	rec := sessionRecord{ID: session.ID, UserID: session.UserID, ExpiresAt: session.ExpiresAt.UTC()}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Get loads a session that has not expired yet.
func (s *SessionStore) Get(ctx context.Context, id string) (*userports.Session, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec sessionRecord
	err := s.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, time.Now().UTC()).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userports.ErrSessionNotFound
		}
		return nil, err
	}
	return &userports.Session{ID: rec.ID, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt}, nil
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "id = ?", id).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now().UTC()).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}
