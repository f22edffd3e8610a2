package models

// RouteModel is a fixed origin/destination pair served by operators.
type RouteModel struct {
	Base
	Origin      string  `json:"origin"      gorm:"index;not null"`
	Destination string  `json:"destination" gorm:"index;not null"`
	DistanceKM  float64 `json:"distance_km"`
}

func (RouteModel) TableName() string { return "routes" }

// BusModel is a vehicle owned by an operator.
type BusModel struct {
	Base
	OperatorID  string `json:"operator_id" gorm:"index;not null"`
	PlateNumber string `json:"plate_number" gorm:"uniqueIndex;not null"`
	Model       string `json:"model"`
	Capacity    int    `json:"capacity"    gorm:"not null"`
}

func (BusModel) TableName() string { return "buses" }
