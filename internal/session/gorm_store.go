package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce/internal/models"
	"github.com/Skotchmaster/ecommerce/internal/repo"
)

type GormStore struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func NewGormStore(r *repo.GormRepo) *GormStore {
	return &GormStore{Repo: r, Now: time.Now}
}

func (s *GormStore) Save(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	return s.Repo.CreateSession(ctx, &models.Session{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
	})
}

func (s *GormStore) Resolve(ctx context.Context, tokenID string) (uint, bool, error) {
	sess, err := s.Repo.FindActiveSession(ctx, tokenID, s.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return sess.UserID, true, nil
}

func (s *GormStore) Revoke(ctx context.Context, tokenID string) error {
	if err := s.Repo.RevokeSession(ctx, tokenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSession
		}
		return err
	}
	return nil
}

// Purge deletes revoked and expired session rows.
func (s *GormStore) Purge(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpiredSessions(ctx, s.Now())
}
