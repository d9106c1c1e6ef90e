package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/ecommerce/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// FindActiveSession returns the session named by tokenID if it is neither
// revoked nor expired at now.
func (r *GormRepo) FindActiveSession(ctx context.Context, tokenID string, now time.Time) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).
		Where("token_id = ? AND revoked = ? AND expires_at > ?", tokenID, false, now.Unix()).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) RevokeSession(ctx context.Context, tokenID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("token_id = ? AND revoked = ?", tokenID, false).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteExpiredSessions purges sessions that can no longer resolve.
func (r *GormRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at <= ? OR revoked = ?", now.Unix(), true).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
