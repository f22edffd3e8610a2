package models

// OperatorModel is a bus company operating schedules on the platform.
type OperatorModel struct {
	Base
	Name    string `json:"name"    gorm:"uniqueIndex;not null"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Active  bool   `json:"active"  gorm:"default:true"`
}

func (OperatorModel) TableName() string { return "operators" }
