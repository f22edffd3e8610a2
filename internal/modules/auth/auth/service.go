package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/e-terminus/core/internal/config"
	"github.com/e-terminus/core/internal/models"
	pkgmail "github.com/e-terminus/core/internal/pkg/mail"
	"github.com/e-terminus/core/internal/pkg/ratelimit"
	sessionpkg "github.com/e-terminus/core/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LockThreshold failed logins lock the account until an admin unlocks it.
const LockThreshold = 5

var phonePattern = regexp.MustCompile(`^260\d{9}$`)

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	limiter *ratelimit.Limiter
	mailer  *pkgmail.Sender
	baseURL string
}

func NewService(db *gorm.DB, log *zap.Logger, limiter *ratelimit.Limiter, mailer *pkgmail.Sender, cfg *config.AppConfig) *Service {
	baseURL := ""
	if cfg != nil {
		baseURL = cfg.BaseURL
	}
	return &Service{db: db, log: log, limiter: limiter, mailer: mailer, baseURL: baseURL}
}

// Login runs the full authentication flow: rate limit, lookup, lock check,
// password check with atomic failure bookkeeping, verification gate, then
// token + session issuance.
func (s *Service) Login(ctx context.Context, dto *LoginDTO, ip, ua string) (string, *models.UserModel, error) {
	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.Check(ctx, ip)
		if err != nil {
			s.log.Warn("login limiter check failed, failing open", zap.Error(err))
		} else if !allowed {
			return "", nil, &RateLimitedError{RetryAfter: retryAfter}
		}
	}

	u, err := s.findByIdentifier(dto.Identifier)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		s.recordFailure(ctx, ip, "")
		return "", nil, errInvalidCredentials
	}

	if u.Locked {
		return "", nil, errAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.Password)); err != nil {
		s.recordFailure(ctx, ip, u.ID)
		return "", nil, errInvalidCredentials
	}

	if !u.Verified {
		return "", nil, errAccountUnverified
	}

	now := time.Now()
	if err := s.db.Model(&models.UserModel{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"failed_logins": 0,
		"locked":        false,
		"last_login_at": &now,
		"last_login_ip": ip,
	}).Error; err != nil {
		return "", nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, ip); err != nil {
			s.log.Warn("login limiter reset failed", zap.Error(err))
		}
	}

	ttl := sessionpkg.DefaultTTL
	if dto.Remember {
		ttl = sessionpkg.RememberTTL
	}
	token, _, err := sessionpkg.Issue(s.db, s.log, u, ip, ua, ttl)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// recordFailure increments the per-account counter atomically (when the
// account exists), locks it at the threshold, and stamps the client window.
func (s *Service) recordFailure(ctx context.Context, ip, userID string) {
	if userID != "" {
		if err := s.db.Model(&models.UserModel{}).Where("id = ?", userID).
			UpdateColumn("failed_logins", gorm.Expr("failed_logins + 1")).Error; err != nil {
			s.log.Warn("failed-login counter update failed", zap.String("user_id", userID), zap.Error(err))
		}
		if err := s.db.Model(&models.UserModel{}).
			Where("id = ? AND failed_logins >= ?", userID, LockThreshold).
			UpdateColumn("locked", true).Error; err != nil {
			s.log.Warn("account lock update failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if s.limiter != nil {
		if err := s.limiter.RecordAttempt(ctx, ip); err != nil {
			s.log.Warn("login limiter record failed", zap.Error(err))
		}
	}
}

func (s *Service) findByIdentifier(identifier string) (*models.UserModel, error) {
	identifier = strings.TrimSpace(identifier)
	column := "username"
	if isEmail(identifier) {
		column = "email"
	}

	var u models.UserModel
	if err := s.db.Where(column+" = ?", identifier).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Register validates the payload, creates the account and mails the
// verification link. Mail failure is logged, not surfaced.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	if err := validateRegister(dto); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.UserModel{}).
		Where("email = ? OR username = ?", dto.Email, dto.Username).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verifyToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	name := dto.Name
	if name == "" {
		name = dto.Username
	}
	u := models.UserModel{
		Username:    strings.TrimSpace(dto.Username),
		Email:       strings.ToLower(strings.TrimSpace(dto.Email)),
		Name:        name,
		Phone:       strings.TrimSpace(dto.Phone),
		Password:    string(hash),
		Role:        models.RolePassenger,
		VerifyToken: verifyToken,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, err
	}

	go s.sendVerification(&u)
	return &u, nil
}

// VerifyEmail marks the account verified and consumes the token.
func (s *Service) VerifyEmail(token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	res := s.db.Model(&models.UserModel{}).
		Where("verify_token = ? AND verified = ?", token, false).
		Updates(map[string]interface{}{"verified": true, "verify_token": ""})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResendVerification mails a fresh link for unverified accounts. The outcome
// is deliberately indistinguishable for unknown addresses.
func (s *Service) ResendVerification(email string) error {
	var u models.UserModel
	err := s.db.Where("email = ? AND verified = ?", strings.ToLower(strings.TrimSpace(email)), false).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if u.VerifyToken == "" {
		token, err := randomToken()
		if err != nil {
			return err
		}
		if err := s.db.Model(&u).UpdateColumn("verify_token", token).Error; err != nil {
			return err
		}
		u.VerifyToken = token
	}

	go s.sendVerification(&u)
	return nil
}

// Logout deletes the session row for the presented token.
func (s *Service) Logout(token string) error {
	return sessionpkg.DeleteByToken(s.db, token)
}

func (s *Service) sendVerification(u *models.UserModel) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendVerificationEmail(u.Email, u.Name, u.VerifyToken, s.baseURL); err != nil {
		s.log.Warn("verification email failed",
			zap.String("user_id", u.ID), zap.Error(err))
	}
}

func validateRegister(dto *RegisterDTO) error {
	if !isEmail(strings.TrimSpace(dto.Email)) {
		return &ValidationError{Field: "email", Message: "Invalid email address"}
	}
	username := strings.TrimSpace(dto.Username)
	if len(username) < 3 || len(username) > 30 {
		return &ValidationError{Field: "username", Message: "Username must be 3-30 characters"}
	}
	if len(dto.Password) < 8 {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	if phone := strings.TrimSpace(dto.Phone); phone != "" && !phonePattern.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: "Phone must be in international format 260XXXXXXXXX"}
	}
	return nil
}

func isEmail(s string) bool {
	if !strings.Contains(s, "@") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func randomToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
