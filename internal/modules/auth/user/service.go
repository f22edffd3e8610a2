package user

import (
	"regexp"
	"strings"

	"github.com/e-terminus/core/internal/models"
	sessionpkg "github.com/e-terminus/core/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^260\d{9}$`)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Get(userID string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies the non-nil fields of the DTO.
func (s *Service) UpdateProfile(userID string, dto *UpdateProfileDTO) (*models.UserModel, error) {
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Phone != nil {
		phone := strings.TrimSpace(*dto.Phone)
		if phone != "" && !phonePattern.MatchString(phone) {
			return nil, errInvalidPhone
		}
		updates["phone"] = phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.UserModel{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every other session so stolen tokens die with the old password.
func (s *Service) ChangePassword(userID, sessionID string, dto *ChangePasswordDTO) error {
	if len(dto.NewPassword) < 8 {
		return errShortPassword
	}

	u, err := s.Get(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.CurrentPassword)); err != nil {
		return errWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.db.Model(&models.UserModel{}).Where("id = ?", userID).
		UpdateColumn("password", string(hash)).Error; err != nil {
		return err
	}

	if err := sessionpkg.RevokeAllExcept(s.db, userID, sessionID); err != nil {
		s.log.Warn("session revocation after password change failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
