package schedule

import (
	"testing"
	"time"

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

type fixture struct {
	operator models.OperatorModel
	route    models.RouteModel
	bus      models.BusModel
}

func seedFixture(t *testing.T, db *gorm.DB, origin, destination string) fixture {
	t.Helper()
	f := fixture{
		operator: models.OperatorModel{Name: origin + "-" + destination + " Coaches", Active: true},
		route:    models.RouteModel{Origin: origin, Destination: destination, DistanceKM: 480},
		bus:      models.BusModel{PlateNumber: "BAD " + origin[:2] + destination[:2], Model: "Marcopolo G7", Capacity: 44},
	}
	require.NoError(t, db.Create(&f.operator).Error)
	require.NoError(t, db.Create(&f.route).Error)
	f.bus.OperatorID = f.operator.ID
	require.NoError(t, db.Create(&f.bus).Error)
	return f
}

func (f fixture) createDTO(departure time.Time) *CreateScheduleDTO {
	return &CreateScheduleDTO{
		OperatorID:    f.operator.ID,
		RouteID:       f.route.ID,
		BusID:         f.bus.ID,
		DepartureTime: departure,
		Fare:          350,
	}
}

func TestCreateDefaultsSeatsToBusCapacity(t *testing.T) {
	svc := newTestService(t)
	f := seedFixture(t, svc.db, "Lusaka", "Livingstone")

	sched, err := svc.Create(f.createDTO(time.Now().Add(48 * time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 44, sched.SeatsAvailable)
	assert.Equal(t, models.ScheduleActive, sched.Status)
	require.NotNil(t, sched.Route)
	assert.Equal(t, "Lusaka", sched.Route.Origin)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	f := seedFixture(t, svc.db, "Lusaka", "Kitwe")

	dto := f.createDTO(time.Now().Add(24 * time.Hour))
	dto.Fare = 0
	_, err := svc.Create(dto)
	assert.ErrorIs(t, err, errInvalidFare)

	dto = f.createDTO(time.Now().Add(-time.Hour))
	_, err = svc.Create(dto)
	assert.ErrorIs(t, err, errPastDeparture)

	dto = f.createDTO(time.Now().Add(24 * time.Hour))
	dto.BusID = "missing"
	_, err = svc.Create(dto)
	assert.ErrorIs(t, err, errUnknownBus)
}

func TestSearchFiltersRouteAndDate(t *testing.T) {
	svc := newTestService(t)
	south := seedFixture(t, svc.db, "Lusaka", "Livingstone")
	north := seedFixture(t, svc.db, "Lusaka", "Kitwe")

	now := time.Now().UTC().AddDate(0, 0, 3)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(south.createDTO(day.Add(8 * time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(south.createDTO(day.Add(32 * time.Hour))) // next day
	require.NoError(t, err)
	_, err = svc.Create(north.createDTO(day.Add(9 * time.Hour)))
	require.NoError(t, err)

	page := pagination.Query{Page: 1, Size: 10}

	results, meta, err := svc.Search(SearchQuery{From: "Lusaka", To: "Livingstone"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, meta.Total)

	results, _, err = svc.Search(SearchQuery{
		From: "Lusaka",
		To:   "Livingstone",
		Date: day.Format("2006-01-02"),
	}, page)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Livingstone", results[0].Route.Destination)

	_, _, err = svc.Search(SearchQuery{Date: "03-09-2026"}, page)
	assert.ErrorIs(t, err, errInvalidDate)
}

func TestSearchExcludesCancelled(t *testing.T) {
	svc := newTestService(t)
	f := seedFixture(t, svc.db, "Ndola", "Solwezi")

	sched, err := svc.Create(f.createDTO(time.Now().Add(24 * time.Hour)))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(sched.ID))

	_, meta, err := svc.Search(SearchQuery{From: "Ndola"}, pagination.Query{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, meta.Total)

	// Cancelling twice stays a no-op, detail still served.
	require.NoError(t, svc.Cancel(sched.ID))
	got, err := svc.Get(sched.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleCancelled, got.Status)
}

func TestCancelUnknownSchedule(t *testing.T) {
	svc := newTestService(t)
	assert.ErrorIs(t, svc.Cancel("missing"), gorm.ErrRecordNotFound)
}
