package booking

import (
	"context"
	"time"

	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/modules/payment"
	"github.com/e-terminus/core/internal/pkg/pagination"
	"github.com/e-terminus/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentGateway starts collecting money for a booking. Settlement arrives
// later on the callback endpoint.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, reference string, amount float64, method string) (*payment.InitiateResult, error)
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	gateway PaymentGateway
	prefix  string
}

func NewService(db *gorm.DB, log *zap.Logger, gateway PaymentGateway, prefix string) *Service {
	return &Service{db: db, log: log, gateway: gateway, prefix: prefix}
}

// Create reserves seats, writes the pending booking/tickets/payment rows and
// asks the gateway to start collection. A gateway failure leaves the booking
// pending so the client can retry payment; the seats stay held.
func (s *Service) Create(ctx context.Context, userID string, dto *CreateBookingDTO) (*models.BookingModel, error) {
	if dto.Seats < 1 || dto.Seats > MaxSeatsPerBooking {
		return nil, errInvalidSeatCount
	}

	var booking models.BookingModel
	var reference string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Atomic seat hold: the guarded decrement is the only writer, so two
		// concurrent bookings can never oversell.
		res := tx.Model(&models.ScheduleModel{}).
			Where("id = ? AND status = ? AND departure_time > ? AND seats_available >= ?",
				dto.ScheduleID, models.ScheduleActive, time.Now(), dto.Seats).
			UpdateColumn("seats_available", gorm.Expr("seats_available - ?", dto.Seats))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.classifyHoldFailure(tx, dto)
		}

		var sched models.ScheduleModel
		if err := tx.First(&sched, "id = ?", dto.ScheduleID).Error; err != nil {
			return err
		}

		booking = models.BookingModel{
			UserID:     userID,
			ScheduleID: sched.ID,
			SeatCount:  dto.Seats,
			Amount:     sched.Fare * float64(dto.Seats),
			Status:     models.BookingPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		base, err := s.nextSeatNumber(tx, sched.ID)
		if err != nil {
			return err
		}
		tickets := make([]models.TicketModel, dto.Seats)
		for i := range tickets {
			tickets[i] = models.TicketModel{
				BookingID:  booking.ID,
				SeatNumber: base + i,
			}
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}
		booking.Tickets = tickets

		pay := models.PaymentModel{
			BookingID: booking.ID,
			Amount:    booking.Amount,
			Method:    dto.Method,
			Status:    models.PaymentPending,
		}
		if err := tx.Create(&pay).Error; err != nil {
			return err
		}

		reference = payment.BuildReference(s.prefix, booking.ID, pay.ID)
		return tx.Model(&pay).UpdateColumn("reference_no", reference).Error
	})
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.InitiatePayment(ctx, reference, booking.Amount, dto.Method)
	if err != nil || !result.Success {
		s.log.Error("payment initiation failed",
			zap.String("booking_id", booking.ID),
			zap.String("reference", reference),
			zap.Error(err))
		return &booking, errGatewayFailure
	}
	return &booking, nil
}

func (s *Service) classifyHoldFailure(tx *gorm.DB, dto *CreateBookingDTO) error {
	var sched models.ScheduleModel
	if err := tx.First(&sched, "id = ?", dto.ScheduleID).Error; err != nil {
		return err
	}
	if sched.Status != models.ScheduleActive || !sched.DepartureTime.After(time.Now()) {
		return errScheduleUnavailable
	}
	return errNotEnoughSeats
}

// nextSeatNumber numbers seats per schedule in sale order.
func (s *Service) nextSeatNumber(tx *gorm.DB, scheduleID string) (int, error) {
	var sold int64
	err := tx.Model(&models.TicketModel{}).
		Joins("JOIN bookings ON bookings.id = tickets.booking_id").
		Where("bookings.schedule_id = ? AND bookings.status <> ?", scheduleID, models.BookingCancelled).
		Count(&sold).Error
	if err != nil {
		return 0, err
	}
	return int(sold) + 1, nil
}

// List returns the user's bookings, newest first.
func (s *Service) List(userID string, page pagination.Query) ([]models.BookingModel, response.Pagination, error) {
	query := s.db.Model(&models.BookingModel{}).
		Where("user_id = ?", userID).
		Preload("Tickets").
		Order("created_at DESC")

	var bookings []models.BookingModel
	meta, err := pagination.Paginate(query, page, &bookings)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return bookings, meta, nil
}

// Get returns a booking to its owner or to an admin.
func (s *Service) Get(id, userID, role string) (*models.BookingModel, error) {
	var booking models.BookingModel
	if err := s.db.Preload("Tickets").First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if booking.UserID != userID && role != models.RoleAdmin {
		return nil, errNotOwner
	}
	return &booking, nil
}
