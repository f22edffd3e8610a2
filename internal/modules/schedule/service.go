package schedule

import (
	"errors"
	"strings"
	"time"

	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/pkg/pagination"
	"github.com/e-terminus/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Get(id string) (*models.ScheduleModel, error) {
	var sched models.ScheduleModel
	err := s.db.Preload("Operator").Preload("Route").Preload("Bus").
		First(&sched, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// Search lists active schedules matching the route filters, soonest first.
func (s *Service) Search(q SearchQuery, page pagination.Query) ([]models.ScheduleModel, response.Pagination, error) {
	query := s.db.Model(&models.ScheduleModel{}).
		Joins("JOIN routes ON routes.id = schedules.route_id").
		Where("schedules.status = ?", models.ScheduleActive).
		Preload("Operator").Preload("Route").Preload("Bus").
		Order("schedules.departure_time ASC")

	if from := strings.TrimSpace(q.From); from != "" {
		query = query.Where("routes.origin = ?", from)
	}
	if to := strings.TrimSpace(q.To); to != "" {
		query = query.Where("routes.destination = ?", to)
	}
	if date := strings.TrimSpace(q.Date); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, response.Pagination{}, errInvalidDate
		}
		query = query.Where("schedules.departure_time >= ? AND schedules.departure_time < ?",
			day, day.AddDate(0, 0, 1))
	}

	var schedules []models.ScheduleModel
	meta, err := pagination.Paginate(query, page, &schedules)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return schedules, meta, nil
}

// Create validates references and times, defaulting seats to the bus capacity.
func (s *Service) Create(dto *CreateScheduleDTO) (*models.ScheduleModel, error) {
	if dto.Fare <= 0 {
		return nil, errInvalidFare
	}
	if dto.DepartureTime.Before(time.Now()) {
		return nil, errPastDeparture
	}
	if !dto.ArrivalTime.IsZero() && dto.ArrivalTime.Before(dto.DepartureTime) {
		return nil, errArrivalOrder
	}

	var route models.RouteModel
	if err := s.db.First(&route, "id = ?", dto.RouteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUnknownRoute
		}
		return nil, err
	}

	var bus models.BusModel
	if err := s.db.First(&bus, "id = ?", dto.BusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUnknownBus
		}
		return nil, err
	}

	seats := bus.Capacity
	if dto.SeatsAvailable != nil {
		if *dto.SeatsAvailable < 0 {
			return nil, errInvalidSeats
		}
		seats = *dto.SeatsAvailable
	}

	sched := models.ScheduleModel{
		OperatorID:     dto.OperatorID,
		RouteID:        dto.RouteID,
		BusID:          dto.BusID,
		DepartureTime:  dto.DepartureTime,
		ArrivalTime:    dto.ArrivalTime,
		Fare:           dto.Fare,
		SeatsAvailable: seats,
		Status:         models.ScheduleActive,
	}
	if err := s.db.Create(&sched).Error; err != nil {
		return nil, err
	}
	return s.Get(sched.ID)
}

// Update applies the non-nil fields. Departed schedules are immutable.
func (s *Service) Update(id string, dto *UpdateScheduleDTO) (*models.ScheduleModel, error) {
	sched, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sched.Status == models.ScheduleDeparted {
		return nil, errAlreadyDeparted
	}

	updates := map[string]interface{}{}
	if dto.DepartureTime != nil {
		updates["departure_time"] = *dto.DepartureTime
	}
	if dto.ArrivalTime != nil {
		updates["arrival_time"] = *dto.ArrivalTime
	}
	if dto.Fare != nil {
		if *dto.Fare <= 0 {
			return nil, errInvalidFare
		}
		updates["fare"] = *dto.Fare
	}
	if dto.SeatsAvailable != nil {
		if *dto.SeatsAvailable < 0 {
			return nil, errInvalidSeats
		}
		updates["seats_available"] = *dto.SeatsAvailable
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.ScheduleModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(id)
}

// Cancel marks the schedule cancelled. Repeat calls are no-ops.
func (s *Service) Cancel(id string) error {
	res := s.db.Model(&models.ScheduleModel{}).
		Where("id = ? AND status <> ?", id, models.ScheduleDeparted).
		Update("status", models.ScheduleCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var sched models.ScheduleModel
		if err := s.db.Select("status").First(&sched, "id = ?", id).Error; err != nil {
			return err
		}
		if sched.Status == models.ScheduleDeparted {
			return errAlreadyDeparted
		}
	}
	return nil
}
