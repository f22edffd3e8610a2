package review

import (
	"strings"
	"testing"

	"github.com/e-terminus/core/internal/database"
	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return NewService(db, zap.NewNop())
}

func seedUserAndOperator(t *testing.T, db *gorm.DB) (userID, operatorID string) {
	t.Helper()
	u := models.UserModel{
		Username: "banda", Email: "banda@example.com", Name: "Banda",
		Password: "irrelevant", Role: models.RolePassenger, Verified: true,
	}
	require.NoError(t, db.Create(&u).Error)

	op := models.OperatorModel{Name: "Power Tools Coaches", Active: true}
	require.NoError(t, db.Create(&op).Error)
	return u.ID, op.ID
}

func TestCreateValidatesRatingBounds(t *testing.T) {
	svc := newTestService(t)
	userID, operatorID := seedUserAndOperator(t, svc.db)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.Create(userID, &CreateReviewDTO{OperatorID: operatorID, Rating: rating})
		assert.ErrorIs(t, err, errInvalidRating, "rating %d", rating)
	}

	r, err := svc.Create(userID, &CreateReviewDTO{OperatorID: operatorID, Rating: 5, Comment: "Clean buses, on time"})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
	require.NotNil(t, r.User)
	assert.Equal(t, "banda", r.User.Username)
}

func TestCreateRejectsLongComment(t *testing.T) {
	svc := newTestService(t)
	userID, operatorID := seedUserAndOperator(t, svc.db)

	_, err := svc.Create(userID, &CreateReviewDTO{
		OperatorID: operatorID,
		Rating:     4,
		Comment:    strings.Repeat("x", maxCommentLength+1),
	})
	assert.ErrorIs(t, err, errCommentTooLong)
}

func TestCreateUnknownOperator(t *testing.T) {
	svc := newTestService(t)
	userID, _ := seedUserAndOperator(t, svc.db)

	_, err := svc.Create(userID, &CreateReviewDTO{OperatorID: "missing", Rating: 3})
	assert.ErrorIs(t, err, errUnknownOperator)
}

func TestListByOperatorNewestFirst(t *testing.T) {
	svc := newTestService(t)
	userID, operatorID := seedUserAndOperator(t, svc.db)

	for i := 1; i <= 3; i++ {
		_, err := svc.Create(userID, &CreateReviewDTO{OperatorID: operatorID, Rating: i})
		require.NoError(t, err)
	}

	reviews, meta, err := svc.ListByOperator(operatorID, pagination.Query{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, meta.Total)
	assert.Equal(t, 2, len(reviews))
	assert.True(t, meta.HasNextPage)
}
