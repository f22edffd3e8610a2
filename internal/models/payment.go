package models

// Payment lifecycle states.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// PaymentModel is one charge against a booking through the external gateway.
type PaymentModel struct {
	Base
	BookingID   string  `json:"booking_id"   gorm:"index;not null"`
	Amount      float64 `json:"amount"       gorm:"not null"`
	Method      string  `json:"method"`
	ReferenceNo string  `json:"reference_no" gorm:"index"`
	Status      string  `json:"status"       gorm:"default:pending;not null"`
}

func (PaymentModel) TableName() string { return "payments" }
