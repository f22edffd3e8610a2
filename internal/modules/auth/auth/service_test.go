package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/e-terminus/core/internal/database"
	"github.com/e-terminus/core/internal/models"
	jwtpkg "github.com/e-terminus/core/internal/pkg/jwt"
	"github.com/e-terminus/core/internal/pkg/ratelimit"
	sessionpkg "github.com/e-terminus/core/internal/pkg/session"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	require.NoError(t, jwtpkg.SetSecret("test-secret-key"))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := ratelimit.NewLoginLimiter(rdb)

	svc := NewService(newTestDB(t), zap.NewNop(), limiter, nil, nil)
	return svc, mr
}

func createUser(t *testing.T, db *gorm.DB, email, password string, verified bool) *models.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.UserModel{
		Username: email[:3] + "user",
		Email:    email,
		Name:     "Test User",
		Password: string(hash),
		Role:     models.RolePassenger,
		Verified: verified,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc.db, "mulenga@example.com", "correct horse", true)

	token, u, err := svc.Login(context.Background(), &LoginDTO{
		Identifier: "mulenga@example.com",
		Password:   "correct horse",
	}, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtpkg.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	active, err := sessionpkg.IsActive(svc.db, u.ID, claims.SessionID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestLoginUnknownAndWrongPasswordIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc.db, "known@example.com", "secret-password", true)

	_, _, errUnknown := svc.Login(context.Background(), &LoginDTO{
		Identifier: "nobody@example.com",
		Password:   "whatever",
	}, "10.0.0.2", "ua")
	_, _, errWrong := svc.Login(context.Background(), &LoginDTO{
		Identifier: "known@example.com",
		Password:   "not-the-password",
	}, "10.0.0.2", "ua")

	assert.ErrorIs(t, errUnknown, errInvalidCredentials)
	assert.ErrorIs(t, errWrong, errInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	svc, _ := newTestService(t)
	u := createUser(t, svc.db, "locked@example.com", "secret-password", true)

	for i := 0; i < LockThreshold; i++ {
		// Spread attempts over addresses so the account lock triggers
		// before the per-address limiter does.
		ip := string(rune('a' + i))
		_, _, err := svc.Login(context.Background(), &LoginDTO{
			Identifier: "locked@example.com",
			Password:   "wrong",
		}, ip, "ua")
		require.ErrorIs(t, err, errInvalidCredentials)
	}

	var fresh models.UserModel
	require.NoError(t, svc.db.First(&fresh, "id = ?", u.ID).Error)
	assert.True(t, fresh.Locked)
	assert.EqualValues(t, LockThreshold, fresh.FailedLogins)

	// Correct password no longer helps.
	_, _, err := svc.Login(context.Background(), &LoginDTO{
		Identifier: "locked@example.com",
		Password:   "secret-password",
	}, "z", "ua")
	assert.ErrorIs(t, err, errAccountLocked)
}

func TestLoginRateLimitedPerAddress(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc.db, "target@example.com", "secret-password", true)

	ip := "203.0.113.9"
	for i := 0; i < int(ratelimit.LoginMaxAttempts); i++ {
		// Alternate identifiers so the address limiter, not the account
		// lock, is what trips.
		identifier := "noone@example.com"
		if i%2 == 0 {
			identifier = "target@example.com"
		}
		_, _, err := svc.Login(context.Background(), &LoginDTO{
			Identifier: identifier,
			Password:   "wrong",
		}, ip, "ua")
		require.ErrorIs(t, err, errInvalidCredentials)
	}

	_, _, err := svc.Login(context.Background(), &LoginDTO{
		Identifier: "target@example.com",
		Password:   "secret-password",
	}, ip, "ua")
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Greater(t, rl.RetryAfter, int64(0))
	assert.LessOrEqual(t, rl.RetryAfter, int64(900))

	// Other addresses are unaffected. The account saw only 3 failures,
	// so the correct password still works from a clean address.
	_, _, err = svc.Login(context.Background(), &LoginDTO{
		Identifier: "target@example.com",
		Password:   "secret-password",
	}, "203.0.113.10", "ua")
	require.NoError(t, err)
}

func TestLoginSuccessResetsFailureState(t *testing.T) {
	svc, _ := newTestService(t)
	u := createUser(t, svc.db, "reset@example.com", "secret-password", true)

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(context.Background(), &LoginDTO{
			Identifier: "reset@example.com",
			Password:   "wrong",
		}, "10.0.0.3", "ua")
		require.ErrorIs(t, err, errInvalidCredentials)
	}

	_, _, err := svc.Login(context.Background(), &LoginDTO{
		Identifier: "reset@example.com",
		Password:   "secret-password",
	}, "10.0.0.3", "ua")
	require.NoError(t, err)

	var fresh models.UserModel
	require.NoError(t, svc.db.First(&fresh, "id = ?", u.ID).Error)
	assert.EqualValues(t, 0, fresh.FailedLogins)
	assert.False(t, fresh.Locked)
	assert.NotNil(t, fresh.LastLoginAt)
}

func TestLoginUnverifiedAccount(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc.db, "pending@example.com", "secret-password", false)

	_, _, err := svc.Login(context.Background(), &LoginDTO{
		Identifier: "pending@example.com",
		Password:   "secret-password",
	}, "10.0.0.4", "ua")
	assert.ErrorIs(t, err, errAccountUnverified)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	u := createUser(t, svc.db, "bye@example.com", "secret-password", true)

	token, _, err := svc.Login(context.Background(), &LoginDTO{
		Identifier: "bye@example.com",
		Password:   "secret-password",
	}, "10.0.0.5", "ua")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))

	// Token still verifies cryptographically but the session is gone.
	claims, err := jwtpkg.Parse(token)
	require.NoError(t, err)
	active, err := sessionpkg.IsActive(svc.db, u.ID, claims.SessionID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRegisterAndVerify(t *testing.T) {
	svc, _ := newTestService(t)

	u, err := svc.Register(&RegisterDTO{
		Username: "chanda",
		Email:    "Chanda@Example.com",
		Password: "long enough pass",
		Phone:    "260977123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "chanda@example.com", u.Email)
	assert.Equal(t, models.RolePassenger, u.Role)
	assert.False(t, u.Verified)
	require.NotEmpty(t, u.VerifyToken)

	ok, err := svc.VerifyEmail(u.VerifyToken)
	require.NoError(t, err)
	assert.True(t, ok)

	// Token is single use.
	ok, err = svc.VerifyEmail(u.VerifyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	var fresh models.UserModel
	require.NoError(t, svc.db.First(&fresh, "id = ?", u.ID).Error)
	assert.True(t, fresh.Verified)
	assert.Empty(t, fresh.VerifyToken)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc.db, "taken@example.com", "secret-password", true)

	_, err := svc.Register(&RegisterDTO{
		Username: "someoneelse",
		Email:    "taken@example.com",
		Password: "long enough pass",
	})
	assert.ErrorIs(t, err, errDuplicateAccount)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name  string
		dto   RegisterDTO
		field string
	}{
		{"bad email", RegisterDTO{Username: "chanda", Email: "not-an-email", Password: "long enough pass"}, "email"},
		{"short username", RegisterDTO{Username: "ab", Email: "a@b.com", Password: "long enough pass"}, "username"},
		{"short password", RegisterDTO{Username: "chanda", Email: "a@b.com", Password: "short"}, "password"},
		{"local phone format", RegisterDTO{Username: "chanda", Email: "a@b.com", Password: "long enough pass", Phone: "0977123456"}, "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(&tc.dto)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}
