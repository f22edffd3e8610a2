package models

// Booking lifecycle states.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// BookingModel groups the tickets a user bought for one schedule.
type BookingModel struct {
	Base
	UserID     string  `json:"user_id"     gorm:"index;not null"`
	ScheduleID string  `json:"schedule_id" gorm:"index;not null"`
	SeatCount  int     `json:"seat_count"  gorm:"not null"`
	Amount     float64 `json:"amount"      gorm:"not null"`
	Status     string  `json:"status"      gorm:"default:pending;not null"`

	Tickets []TicketModel `json:"tickets,omitempty" gorm:"foreignKey:BookingID"`
}

func (BookingModel) TableName() string { return "bookings" }

// TicketModel is a single seat on a booking.
type TicketModel struct {
	Base
	BookingID  string `json:"booking_id" gorm:"index;not null"`
	SeatNumber int    `json:"seat_number"`
	IsUsed     bool   `json:"is_used"    gorm:"default:false"`
}

func (TicketModel) TableName() string { return "tickets" }
