package models

// ReviewModel is a passenger rating of an operator.
type ReviewModel struct {
	Base
	UserID     string `json:"user_id"     gorm:"index;not null"`
	OperatorID string `json:"operator_id" gorm:"index;not null"`
	Rating     int    `json:"rating"      gorm:"not null"`
	Comment    string `json:"comment"     gorm:"type:text"`

	User *UserModel `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ReviewModel) TableName() string { return "reviews" }
