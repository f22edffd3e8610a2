package models

import "time"

// Schedule lifecycle states.
const (
	ScheduleActive    = "active"
	ScheduleCancelled = "cancelled"
	ScheduleDeparted  = "departed"
)

// ScheduleModel is a departure of a bus on a route at a given time.
type ScheduleModel struct {
	Base
	OperatorID     string    `json:"operator_id" gorm:"index;not null"`
	RouteID        string    `json:"route_id"    gorm:"index;not null"`
	BusID          string    `json:"bus_id"      gorm:"index;not null"`
	DepartureTime  time.Time `json:"departure_time" gorm:"index;not null"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Fare           float64   `json:"fare"        gorm:"not null"`
	SeatsAvailable int       `json:"seats_available"`
	Status         string    `json:"status"      gorm:"default:active;not null"`

	Operator *OperatorModel `json:"operator,omitempty" gorm:"foreignKey:OperatorID"`
	Route    *RouteModel    `json:"route,omitempty"    gorm:"foreignKey:RouteID"`
	Bus      *BusModel      `json:"bus,omitempty"      gorm:"foreignKey:BusID"`
}

func (ScheduleModel) TableName() string { return "schedules" }
