package schedule

import (
	"errors"
	"time"
)

// SearchQuery carries the public search filters.
type SearchQuery struct {
	From string
	To   string
	Date string // YYYY-MM-DD, optional
}

type CreateScheduleDTO struct {
	OperatorID     string    `json:"operator_id" binding:"required"`
	RouteID        string    `json:"route_id"    binding:"required"`
	BusID          string    `json:"bus_id"      binding:"required"`
	DepartureTime  time.Time `json:"departure_time" binding:"required"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Fare           float64   `json:"fare" binding:"required"`
	SeatsAvailable *int      `json:"seats_available"`
}

type UpdateScheduleDTO struct {
	DepartureTime  *time.Time `json:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	Fare           *float64   `json:"fare"`
	SeatsAvailable *int       `json:"seats_available"`
}

var (
	errInvalidFare     = errors.New("fare must be greater than zero")
	errInvalidSeats    = errors.New("seats_available cannot be negative")
	errUnknownBus      = errors.New("bus not found")
	errUnknownRoute    = errors.New("route not found")
	errPastDeparture   = errors.New("departure time is in the past")
	errArrivalOrder    = errors.New("arrival time precedes departure")
	errInvalidDate     = errors.New("date must be YYYY-MM-DD")
	errAlreadyDeparted = errors.New("schedule has already departed")
)
