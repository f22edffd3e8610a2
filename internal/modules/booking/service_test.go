package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/e-terminus/core/internal/config"
	"github.com/e-terminus/core/internal/database"
	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/modules/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGateway struct {
	fail     bool
	lastRef  string
	lastAmnt float64
}

func (g *stubGateway) InitiatePayment(_ context.Context, reference string, amount float64, _ string) (*payment.InitiateResult, error) {
	g.lastRef = reference
	g.lastAmnt = amount
	if g.fail {
		return nil, errors.New("gateway unreachable")
	}
	return &payment.InitiateResult{Success: true, ReferenceNo: reference}, nil
}

func newTestService(t *testing.T, gw PaymentGateway) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return NewService(db, zap.NewNop(), gw, config.DefaultRefPrefix)
}

func seedSchedule(t *testing.T, db *gorm.DB, seats int) models.ScheduleModel {
	t.Helper()
	sched := models.ScheduleModel{
		OperatorID:     "op-1",
		RouteID:        "route-1",
		BusID:          "bus-1",
		DepartureTime:  time.Now().Add(48 * time.Hour),
		Fare:           350,
		SeatsAvailable: seats,
		Status:         models.ScheduleActive,
	}
	require.NoError(t, db.Create(&sched).Error)
	return sched
}

func TestCreateBookingHappyPath(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(t, gw)
	sched := seedSchedule(t, svc.db, 44)

	booking, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{
		ScheduleID: sched.ID,
		Seats:      3,
		Method:     "mobile_money",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.InDelta(t, 1050, booking.Amount, 0.001)
	require.Len(t, booking.Tickets, 3)
	assert.Equal(t, 1, booking.Tickets[0].SeatNumber)
	assert.Equal(t, 3, booking.Tickets[2].SeatNumber)
	assert.False(t, booking.Tickets[0].IsUsed)

	var fresh models.ScheduleModel
	require.NoError(t, svc.db.First(&fresh, "id = ?", sched.ID).Error)
	assert.Equal(t, 41, fresh.SeatsAvailable)

	var pay models.PaymentModel
	require.NoError(t, svc.db.First(&pay, "booking_id = ?", booking.ID).Error)
	assert.Equal(t, models.PaymentPending, pay.Status)
	assert.Equal(t, payment.BuildReference(config.DefaultRefPrefix, booking.ID, pay.ID), pay.ReferenceNo)
	assert.Equal(t, pay.ReferenceNo, gw.lastRef)
	assert.InDelta(t, 1050, gw.lastAmnt, 0.001)
}

func TestCreateBookingSeatNumbersContinue(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	sched := seedSchedule(t, svc.db, 44)

	_, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 2})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "user-2", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 2})
	require.NoError(t, err)

	require.Len(t, second.Tickets, 2)
	assert.Equal(t, 3, second.Tickets[0].SeatNumber)
	assert.Equal(t, 4, second.Tickets[1].SeatNumber)
}

func TestCreateBookingOversell(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	sched := seedSchedule(t, svc.db, 2)

	_, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 3})
	assert.ErrorIs(t, err, errNotEnoughSeats)

	// Seats untouched after the rejected hold.
	var fresh models.ScheduleModel
	require.NoError(t, svc.db.First(&fresh, "id = ?", sched.ID).Error)
	assert.Equal(t, 2, fresh.SeatsAvailable)
}

func TestCreateBookingOnCancelledSchedule(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	sched := seedSchedule(t, svc.db, 44)
	require.NoError(t, svc.db.Model(&sched).Update("status", models.ScheduleCancelled).Error)

	_, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 1})
	assert.ErrorIs(t, err, errScheduleUnavailable)
}

func TestCreateBookingSeatCountBounds(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	sched := seedSchedule(t, svc.db, 44)

	for _, seats := range []int{0, -1, MaxSeatsPerBooking + 1} {
		_, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: seats})
		assert.ErrorIs(t, err, errInvalidSeatCount, "seats %d", seats)
	}
}

func TestCreateBookingGatewayFailureLeavesPending(t *testing.T) {
	svc := newTestService(t, &stubGateway{fail: true})
	sched := seedSchedule(t, svc.db, 44)

	booking, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 2})
	assert.ErrorIs(t, err, errGatewayFailure)
	require.NotNil(t, booking)

	var fresh models.BookingModel
	require.NoError(t, svc.db.First(&fresh, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingPending, fresh.Status)
}

func TestBookingCallbackSettlement(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	sched := seedSchedule(t, svc.db, 44)

	booking, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 2})
	require.NoError(t, err)

	var pay models.PaymentModel
	require.NoError(t, svc.db.First(&pay, "booking_id = ?", booking.ID).Error)

	paySvc := payment.NewService(svc.db, zap.NewNop(), config.DefaultRefPrefix)
	settled, err := paySvc.HandleCallback(pay.ReferenceNo, payment.CallbackSuccess)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, settled.Status)

	confirmed, err := svc.Get(booking.ID, "user-1", models.RolePassenger)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	for _, ticket := range confirmed.Tickets {
		assert.False(t, ticket.IsUsed)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	sched := seedSchedule(t, svc.db, 44)

	booking, err := svc.Create(context.Background(), "user-1", &CreateBookingDTO{ScheduleID: sched.ID, Seats: 1})
	require.NoError(t, err)

	_, err = svc.Get(booking.ID, "user-2", models.RolePassenger)
	assert.ErrorIs(t, err, errNotOwner)

	got, err := svc.Get(booking.ID, "user-2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
}
