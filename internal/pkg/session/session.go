package session

import (
	"strings"
	"time"

	"github.com/e-terminus/core/internal/models"
	jwtpkg "github.com/e-terminus/core/internal/pkg/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// DefaultTTL is the token lifetime for a plain login.
	DefaultTTL = 24 * time.Hour
	// RememberTTL is the token lifetime when the client asks to be remembered.
	RememberTTL = 30 * 24 * time.Hour
)

// Issue signs a JWT bound to a fresh session id and persists the session row.
// Session bookkeeping is soft-fail: an insert error is logged but the token is
// still returned, so login never fails on session persistence alone.
func Issue(db *gorm.DB, log *zap.Logger, u *models.UserModel, ip, ua string, ttl time.Duration) (string, *models.UserSession, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	sessionID := uuid.New().String()
	token, err := jwtpkg.Sign(u.ID, u.Email, u.Role, sessionID, ttl)
	if err != nil {
		return "", nil, err
	}

	s := &models.UserSession{
		Base:      models.Base{ID: sessionID},
		UserID:    u.ID,
		Token:     token,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		if log != nil {
			log.Warn("session insert failed, login continues",
				zap.String("user_id", u.ID), zap.Error(err))
		}
	}
	return token, s, nil
}

// IsActive reports whether the session row exists, is unrevoked and unexpired.
func IsActive(db *gorm.DB, userID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsTokenActive is IsActive keyed by the raw token string.
func IsTokenActive(db *gorm.DB, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.UserSession{}).
		Where("token = ? AND revoked_at IS NULL AND expires_at > ?", token, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByToken removes the session row at logout. The row has no further use
// once the client discards the token, so deleting beats flagging.
func DeleteByToken(db *gorm.DB, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return db.Unscoped().Where("token = ?", token).Delete(&models.UserSession{}).Error
}

// Revoke flags a single session without deleting it.
func Revoke(db *gorm.DB, userID, sessionID string) error {
	now := time.Now()
	res := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAllExcept revokes every active session of a user except the given one.
func RevokeAllExcept(db *gorm.DB, userID, keepSessionID string) error {
	now := time.Now()
	query := db.Model(&models.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID)
	if strings.TrimSpace(keepSessionID) != "" {
		query = query.Where("id <> ?", keepSessionID)
	}
	return query.Update("revoked_at", &now).Error
}

// ListActive returns the live sessions of a user, most recent first.
func ListActive(db *gorm.DB, userID string) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("updated_at DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}
