package booking

import "errors"

// MaxSeatsPerBooking caps one checkout. Larger groups book twice.
const MaxSeatsPerBooking = 10

type CreateBookingDTO struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
	Seats      int    `json:"seats"       binding:"required"`
	Method     string `json:"method"`
}

var (
	errInvalidSeatCount    = errors.New("seats must be between 1 and 10")
	errScheduleUnavailable = errors.New("schedule is not open for booking")
	errNotEnoughSeats      = errors.New("not enough seats available")
	errGatewayFailure      = errors.New("payment initiation failed")
	errNotOwner            = errors.New("booking belongs to another user")
)
